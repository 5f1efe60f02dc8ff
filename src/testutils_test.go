package pamon

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

var errSourceDone = errors.New("source done")

// scriptedSource returns its lines in order, then errSourceDone.
type scriptedSource struct {
	lines []string
}

func (s *scriptedSource) ReadLine() (string, error) {
	if len(s.lines) == 0 {
		return "", errSourceDone
	}

	var line = s.lines[0]
	s.lines = s.lines[1:]

	return line, nil
}

// feedSource behaves like a serial port: lines arrive when the test sends
// them, and a quiet link times out with "".  Closing feed ends the source.
type feedSource struct {
	feed chan string
}

func newFeedSource() *feedSource {
	return &feedSource{feed: make(chan string)}
}

func (s *feedSource) ReadLine() (string, error) {
	select {
	case line, ok := <-s.feed:
		if !ok {
			return "", errSourceDone
		}
		return line, nil
	case <-time.After(20 * time.Millisecond):
		return "", nil
	}
}

// syncBuffer is a bytes.Buffer safe for one writer goroutine and a reading test.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.b.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.b.String()
}

func discardLogger(t *testing.T) *log.Logger {
	t.Helper()

	return log.New(io.Discard)
}
