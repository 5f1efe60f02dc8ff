package pamon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Largest handshake accepted; it must arrive in a single read.
const HandshakeBufferSize = 1024

// Session outcomes counted by Metrics.
const (
	SessionStreaming      = "streaming"
	SessionHandshakeError = "handshake_error"
	SessionRefused        = "refused"
)

// ackMessage is sent ahead of every compression value.
var ackMessage = []byte(`{"return": "ok"}`)

// ReadHandshake reads the client's opening message, at most
// HandshakeBufferSize bytes in one read, and decodes it as JSON.  Any
// well-formed JSON value is accepted.
func ReadHandshake(r io.Reader) (any, error) {
	var buf = make([]byte, HandshakeBufferSize)

	var n, readErr = r.Read(buf)
	if n == 0 && readErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandshakeDecode, readErr)
	}

	var msg any
	if err := json.Unmarshal(buf[:n], &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandshakeDecode, err)
	}

	return msg, nil
}

// CompressionMessage encodes the raw compression field for a client, with
// the same spacing as the acknowledgement.
func CompressionMessage(raw string) ([]byte, error) {
	var b bytes.Buffer

	var enc = json.NewEncoder(&b)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(raw); err != nil {
		return nil, err
	}

	var quoted = bytes.TrimRight(b.Bytes(), "\n")

	return fmt.Appendf(nil, `{"Compression": %s}`, quoted), nil
}

// StreamFrames writes the acknowledgement and compression messages for
// each frame until sub closes or a write fails.  Messages are written
// separately and without delimiters.
func StreamFrames(w io.Writer, sub *Subscription, sent func()) error {
	for f := range sub.C {
		if _, err := w.Write(ackMessage); err != nil {
			return err
		}
		sent()

		var msg, err = CompressionMessage(f[Compression])
		if err != nil {
			return err
		}

		if _, err := w.Write(msg); err != nil {
			return err
		}
		sent()
	}

	return nil
}
