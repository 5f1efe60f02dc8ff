package pamon

import "errors"

// Error kinds surfaced by the telemetry pipeline.  Callers match them with errors.Is;
// the wrapped message carries the offending input.
var (
	ErrInvalidNumber      = errors.New("invalid number")
	ErrFieldCountMismatch = errors.New("field count mismatch")
	ErrHandshakeDecode    = errors.New("handshake decode error")
	ErrSerialIO           = errors.New("serial i/o error")

	ErrZeroCoefficient = errors.New("zero calibration coefficient")
	ErrUnsupportedBaud = errors.New("unsupported baud rate")
	ErrTooManyClients  = errors.New("too many clients")
)
