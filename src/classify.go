package pamon

import (
	"strconv"
	"strings"
)

// Mode selects which flavour of the line heuristics applies.  The console
// monitor and the network server were built separately and never agreed.
type Mode int

const (
	ConsoleMode Mode = iota
	ServerMode
)

func (m Mode) String() string {
	switch m {
	case ConsoleMode:
		return "console"
	case ServerMode:
		return "server"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// prefixLen is how many leading bytes must form an integer.
func (m Mode) prefixLen() int {
	if m == ServerMode {
		return 1
	}

	return 3
}

// IsValidRecord decides whether a serial line looks like a telemetry record
// rather than diagnostic chatter from the rig.  Only the leading bytes are
// examined; later fields are not checked until decode.
func IsValidRecord(line string, mode Mode) bool {
	if line == "" {
		return false
	}

	var prefix = line[:min(len(line), mode.prefixLen())]

	var _, err = strconv.Atoi(strings.TrimSpace(prefix))

	return err == nil
}
