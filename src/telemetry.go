package pamon

/*------------------------------------------------------------------
 *
 * Purpose:   	Scaling of raw analog telemetry into engineering units.
 *
 * Description:	Each monitored quantity has a straight line calibration
 *		obtained from the rig:
 *
 *			A -> D		raw = m * value + b
 *			D -> A		value = (raw - b) / m
 *
 *		where m is the coefficient and b the offset.  The value
 *		reported is never the raw reading.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number of analog channels in one telemetry record.
const NumChannels = 5

// Channel positions within a record, in the order the rig sends them.
const (
	PACurrent = iota
	PAVoltage
	RFForward
	RFReflected
	Compression
)

// Channel is the calibration of one telemetry quantity.
type Channel struct {
	Name        string
	Label       string
	Coefficient float64
	Offset      float64
}

// DefaultChannels returns the calibration measured on the KUTD-FM amplifier.
func DefaultChannels() [NumChannels]Channel {
	return [NumChannels]Channel{
		{Name: "pa_current", Label: "PA I:", Coefficient: 48.4, Offset: 159.4},
		{Name: "pa_voltage", Label: "PA V:", Coefficient: 82, Offset: 5},
		{Name: "rf_forward", Label: "RF FWD:", Coefficient: 33.125, Offset: 285.75},
		{Name: "rf_reflected", Label: "RF REF:", Coefficient: 217, Offset: 131.5},
		{Name: "compression", Label: "G/R:", Coefficient: 18, Offset: 424},
	}
}

// Value is one converted reading.  Clamped is set when a negative result
// was floored, in which case the value prints as a bare "0".
type Value struct {
	V       float64
	Clamped bool
}

func (v Value) String() string {
	if v.Clamped {
		return "0"
	}

	// Twelve significant digits, and always something after the point for
	// whole numbers, so "1.0" rather than "1".
	var s = strconv.FormatFloat(v.V, 'g', 12, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}

	return s
}

// Convert applies the inverse calibration to a raw field, rounds to three
// decimal places and floors negative results at zero.
func (c Channel) Convert(raw string) (Value, error) {
	var field = strings.TrimSpace(raw)

	// The rig only sends decimal; hex floats, NaN and infinities are noise.
	var r, err = strconv.ParseFloat(field, 64)
	if err != nil || isHexNumber(field) || math.IsNaN(r) || math.IsInf(r, 0) {
		return Value{}, fmt.Errorf("%w: %s %q", ErrInvalidNumber, c.Name, raw)
	}

	if c.Coefficient == 0 {
		return Value{}, fmt.Errorf("%w: %s", ErrZeroCoefficient, c.Name)
	}

	var v = round3((r - c.Offset) / c.Coefficient)

	// Negative zero counts as negative so it never prints as "-0.0".
	if v < 0 || (v == 0 && math.Signbit(v)) {
		return Value{V: 0, Clamped: true}, nil
	}

	return Value{V: v}, nil
}

func isHexNumber(s string) bool {
	s = strings.TrimLeft(s, "+-")

	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}

// round3 rounds half away from zero, to three decimal places.
func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
