package pamon

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleBlock = "PA I:   0.839\n" +
	"PA V:   1.159\n" +
	"RF FWD: 0.43\n" +
	"RF REF: 0.085\n" +
	"G/R:    1.444\n"

func exampleReading(t *testing.T) Reading {
	t.Helper()

	var f, err = DecodeFrame("200,100,300,150,450")
	require.NoError(t, err)

	var r, calErr = Calibrate(f, DefaultChannels())
	require.NoError(t, calErr)

	return r
}

func TestReporter_Report(t *testing.T) {
	var out bytes.Buffer
	var r = NewReporter(&out, DefaultChannels(), ClearNever, nil)

	require.NoError(t, r.Report(exampleReading(t)))

	assert.Equal(t, exampleBlock, out.String())
}

func TestReporter_ReportClears(t *testing.T) {
	var out bytes.Buffer
	var r = NewReporter(&out, DefaultChannels(), ClearAlways, nil)

	require.NoError(t, r.Report(exampleReading(t)))

	assert.Equal(t, clearScreen+exampleBlock, out.String())
}

func TestReporter_AutoDoesNotClearBuffers(t *testing.T) {
	var out bytes.Buffer
	var r = NewReporter(&out, DefaultChannels(), ClearAuto, nil)

	require.NoError(t, r.Report(exampleReading(t)))

	assert.NotContains(t, out.String(), clearScreen)
}

func TestReporter_ReportRaw(t *testing.T) {
	var out bytes.Buffer
	var r = NewReporter(&out, DefaultChannels(), ClearNever, nil)

	require.NoError(t, r.ReportRaw(Frame{"7", "8", "9", "10", "11"}))

	assert.Equal(t, "PA I:   7\nPA V:   8\nRF FWD: 9\nRF REF: 10\nG/R:    11\n", out.String())
}

func TestReporter_EchoVerbatim(t *testing.T) {
	var out bytes.Buffer
	var r = NewReporter(&out, DefaultChannels(), ClearAlways, nil)

	require.NoError(t, r.Echo("Calibrating...\r\n"))
	require.NoError(t, r.Echo(""))
	require.NoError(t, r.Echo("partial"))

	assert.Equal(t, "Calibrating...\r\npartial", out.String())
}

func TestReporter_Timestamp(t *testing.T) {
	var stamp, err = NewStamper("%H:%M:%S")
	require.NoError(t, err)

	stamp.now = func() time.Time { return time.Date(2015, 6, 1, 12, 34, 56, 0, time.UTC) }

	var out bytes.Buffer
	var r = NewReporter(&out, DefaultChannels(), ClearNever, stamp)

	require.NoError(t, r.Echo("hello\n"))
	require.NoError(t, r.Report(exampleReading(t)))

	assert.Equal(t, "12:34:56 hello\n12:34:56 \n"+exampleBlock, out.String())
}

func TestNewStamper_Empty(t *testing.T) {
	var stamp, err = NewStamper("")

	require.NoError(t, err)
	assert.Nil(t, stamp)
	assert.Empty(t, stamp.Prefix())
}
