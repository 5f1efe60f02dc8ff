package pamon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestIsValidRecord(t *testing.T) {
	var cases = []struct {
		line    string
		console bool
		server  bool
	}{
		{"", false, false},
		{"123,456,789,1,2\r\n", true, true},
		{"abc,1,2,3,4", false, false},
		{"7,8,9,10,11", false, true}, // "7,8" is not an integer
		{"12", true, true},
		{"1\n", true, true},
		{"-12,1,2,3,4", true, false},
		{"Boot v1.2\r\n", false, false},
		{"9ab", false, true},
	}

	for _, c := range cases {
		assert.Equal(t, c.console, IsValidRecord(c.line, ConsoleMode), "console %q", c.line)
		assert.Equal(t, c.server, IsValidRecord(c.line, ServerMode), "server %q", c.line)
	}
}

func TestIsValidRecord_LooksOnlyAtPrefix(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var prefix = rapid.StringMatching(`[0-9]{3}`).Draw(t, "prefix")
		var rest = rapid.String().Draw(t, "rest")

		assert.True(t, IsValidRecord(prefix+rest, ConsoleMode))
		assert.True(t, IsValidRecord(prefix+rest, ServerMode))
	})
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "console", ConsoleMode.String())
	assert.Equal(t, "server", ServerMode.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
