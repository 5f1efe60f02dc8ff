package pamon

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintVersion(t *testing.T) {
	var out bytes.Buffer

	PrintVersion(&out, "pamon", false)

	assert.Contains(t, out.String(), "pamon - Version !UNKNOWN!")
	assert.NotContains(t, out.String(), "Built with")
}

func TestPrintVersion_Verbose(t *testing.T) {
	var out bytes.Buffer

	PrintVersion(&out, "pamon-server", true)

	assert.Contains(t, out.String(), "pamon-server - Version")
	// Test binaries carry build info, including the toolchain version.
	assert.Contains(t, out.String(), "Built with go")
}

func TestDNSSDDefaultName(t *testing.T) {
	assert.Contains(t, DNSSDDefaultName(), "pamon")
}
