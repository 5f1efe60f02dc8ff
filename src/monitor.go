package pamon

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// LineSource delivers serial lines.  An empty line with a nil error means
// the read timed out with nothing received.
type LineSource interface {
	ReadLine() (string, error)
}

// Monitor is the console variant: every record is calibrated and shown on
// the operator's screen.
type Monitor struct {
	Source   LineSource
	Channels [NumChannels]Channel
	Reporter *Reporter
	Policy   MalformedPolicy
	Logger   *log.Logger
	Metrics  *Metrics
	Sink     ReadingSink // optional
}

// Run reads until ctx is done or the source fails.  Under MalformedHalt a
// record that passes the line check but cannot be decoded also ends the
// loop, with an error wrapping ErrFieldCountMismatch or ErrInvalidNumber.
func (m *Monitor) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		var line, err = m.Source.ReadLine()
		if err != nil {
			return err
		}

		if err := m.handle(line); err != nil {
			return err
		}
	}

	return nil
}

func (m *Monitor) handle(line string) error {
	if line == "" {
		return nil
	}

	if !IsValidRecord(line, ConsoleMode) {
		m.Metrics.Line(LineRejected)
		return m.Reporter.Echo(line)
	}

	var reading, err = m.decode(line)
	if err != nil {
		m.Metrics.Line(LineMalformed)

		if m.Policy == MalformedSkip {
			m.Logger.Warn("skipping malformed record", "err", err)
			return nil
		}

		return fmt.Errorf("malformed record: %w", err)
	}

	m.Metrics.Line(LineAccepted)
	m.Metrics.Observe(m.Channels, reading)
	Printc(m.Logger, ColorDecoded, "record", "reading", reading)

	if m.Sink != nil {
		if err := m.Sink.Publish(reading); err != nil {
			m.Logger.Debug("reading not published", "err", err)
		}
	}

	return m.Reporter.Report(reading)
}

func (m *Monitor) decode(line string) (Reading, error) {
	var f, err = DecodeFrame(line)
	if err != nil {
		return Reading{}, err
	}

	return Calibrate(f, m.Channels)
}
