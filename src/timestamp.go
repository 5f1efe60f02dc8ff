package pamon

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/strftime"
)

// Stamper prefixes output with a 'strftime' format time stamp.  A nil
// Stamper writes nothing.
type Stamper struct {
	f   *strftime.Strftime
	now func() time.Time
}

// NewStamper compiles the format.  An empty format disables stamping and
// returns nil.
func NewStamper(format string) (*Stamper, error) {
	if format == "" {
		return nil, nil //nolint:nilnil
	}

	var f, err = strftime.New(format)
	if err != nil {
		return nil, fmt.Errorf("timestamp format %q: %w", format, err)
	}

	return &Stamper{f: f, now: time.Now}, nil
}

// Prefix returns the formatted current time followed by a space.
func (s *Stamper) Prefix() string {
	if s == nil {
		return ""
	}

	return s.f.FormatString(s.now()) + " "
}
