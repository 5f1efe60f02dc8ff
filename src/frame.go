package pamon

import (
	"fmt"
	"strconv"
	"strings"
)

// Frame is one telemetry record split into its raw fields, in channel order.
type Frame [NumChannels]string

// Reading is a calibrated Frame.
type Reading [NumChannels]Value

// DecodeFrame splits a record on commas.  Fields beyond the fifth are
// ignored; surrounding whitespace, including the line terminator, is dropped.
func DecodeFrame(line string) (Frame, error) {
	var fields = strings.Split(line, ",")
	if len(fields) < NumChannels {
		return Frame{}, fmt.Errorf("%w: want %d fields, got %d in %q",
			ErrFieldCountMismatch, NumChannels, len(fields), strings.TrimSpace(line))
	}

	var f Frame
	for i := range f {
		f[i] = strings.TrimSpace(fields[i])
	}

	return f, nil
}

// Calibrate converts every field of the frame with the matching channel.
// The first field that fails to convert aborts the whole frame.
func Calibrate(f Frame, channels [NumChannels]Channel) (Reading, error) {
	var r Reading
	for i, ch := range channels {
		var v, err = ch.Convert(f[i])
		if err != nil {
			return Reading{}, err
		}
		r[i] = v
	}

	return r, nil
}

// Clamp floors negative raw fields at "0" when fix is set.
//
// The network server historically compared the raw text against zero, a test
// that never succeeds, so by default the frame is returned untouched and
// clients see exactly what the rig sent.
func (f Frame) Clamp(fix bool) Frame {
	if !fix {
		return f
	}

	for i, s := range f {
		var x, err = strconv.ParseFloat(s, 64)
		if err == nil && x < 0 {
			f[i] = "0"
		}
	}

	return f
}
