package pamon

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Sequence sent by clear(1) on ANSI terminals: cursor home, erase display.
const clearScreen = "\033[H\033[2J"

// Reporter writes telemetry to the operator's console.
type Reporter struct {
	w      io.Writer
	labels [NumChannels]string
	clear  bool
	stamp  *Stamper
}

// ClearPolicy controls when the screen is cleared before each record.
type ClearPolicy string

const (
	ClearAuto   ClearPolicy = "auto" // only when writing to a terminal
	ClearAlways ClearPolicy = "always"
	ClearNever  ClearPolicy = "never"
)

// NewReporter builds a reporter labelling lines from the channel table.
func NewReporter(w io.Writer, channels [NumChannels]Channel, policy ClearPolicy, stamp *Stamper) *Reporter {
	var r = &Reporter{w: w, stamp: stamp}

	for i, ch := range channels {
		r.labels[i] = ch.Label
	}

	switch policy {
	case ClearAlways:
		r.clear = true
	case ClearNever:
		r.clear = false
	default:
		if f, ok := w.(*os.File); ok {
			r.clear = IsTerminal(f)
		}
	}

	return r
}

// Report clears the display and prints one labelled line per channel.
func (r *Reporter) Report(reading Reading) error {
	var values [NumChannels]string
	for i, v := range reading {
		values[i] = v.String()
	}

	return r.block(values)
}

// ReportRaw is Report for frames that were never calibrated.
func (r *Reporter) ReportRaw(f Frame) error {
	return r.block(f)
}

func (r *Reporter) block(values [NumChannels]string) error {
	var b strings.Builder

	if r.clear {
		b.WriteString(clearScreen)
	}

	if p := r.stamp.Prefix(); p != "" {
		b.WriteString(p)
		b.WriteString("\n")
	}

	for i, v := range values {
		fmt.Fprintf(&b, "%-7s %s\n", r.labels[i], v)
	}

	var _, err = io.WriteString(r.w, b.String())

	return err
}

// Echo passes a rejected line through verbatim.  The line keeps whatever
// terminator it arrived with; nothing is added and the screen is not cleared.
func (r *Reporter) Echo(line string) error {
	if line == "" {
		return nil
	}

	var _, err = io.WriteString(r.w, r.stamp.Prefix()+line)

	return err
}
