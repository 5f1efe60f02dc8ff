package pamon

// Diagnostic output.  The telemetry itself goes to stdout untouched; everything
// else goes through a charmbracelet logger on stderr, with the old text colour
// categories mapped onto log levels.

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

type Color int

const (
	ColorInfo    Color = iota /* normal status */
	ColorError                /* something went wrong */
	ColorRec                  /* record received from the rig */
	ColorDecoded              /* record decoded */
	ColorXmit                 /* message sent to a client */
	ColorDebug
)

func (c Color) level() log.Level {
	switch c {
	case ColorError:
		return log.ErrorLevel
	case ColorRec, ColorDecoded, ColorXmit, ColorDebug:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}

// NewLogger creates the program logger.  level is one of debug, info, warn,
// error.  Styling is dropped automatically when w is not a terminal.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	var lvl, err = log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", level)
	}

	var logger = log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "pamon",
	})

	return logger, nil
}

// Printc logs msg under the given message category.
func Printc(logger *log.Logger, c Color, msg string, keyvals ...any) {
	logger.Log(c.level(), msg, keyvals...)
}
