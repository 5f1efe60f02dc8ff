package pamon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDecodeFrame(t *testing.T) {
	var f, err = DecodeFrame("200,100,300,150,450\r\n")

	require.NoError(t, err)
	assert.Equal(t, Frame{"200", "100", "300", "150", "450"}, f)
}

func TestDecodeFrame_ExtraFieldsIgnored(t *testing.T) {
	var f, err = DecodeFrame("1,2,3,4,5,6,7")

	require.NoError(t, err)
	assert.Equal(t, Frame{"1", "2", "3", "4", "5"}, f)
}

func TestDecodeFrame_TooFewFields(t *testing.T) {
	for _, line := range []string{"123", "1,2,3,4", "123\r\n"} {
		var _, err = DecodeFrame(line)

		assert.ErrorIs(t, err, ErrFieldCountMismatch, line)
	}
}

func TestDecodeFrame_KeepsOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var fields = rapid.SliceOfN(rapid.StringMatching(`-?[0-9]{1,5}`), NumChannels, NumChannels).Draw(t, "fields")

		var line = fields[0] + "," + fields[1] + "," + fields[2] + "," + fields[3] + "," + fields[4] + "\n"

		var f, err = DecodeFrame(line)
		require.NoError(t, err)

		for i := range f {
			assert.Equal(t, fields[i], f[i])
		}
	})
}

func TestCalibrate(t *testing.T) {
	var f, _ = DecodeFrame("200,100,300,150,450")

	var r, err = Calibrate(f, DefaultChannels())

	require.NoError(t, err)
	assert.Equal(t, "0.839", r[PACurrent].String())
	assert.Equal(t, "1.159", r[PAVoltage].String())
	assert.Equal(t, "0.43", r[RFForward].String())
	assert.Equal(t, "0.085", r[RFReflected].String())
	assert.Equal(t, "1.444", r[Compression].String())
}

func TestCalibrate_BadLaterField(t *testing.T) {
	var f, _ = DecodeFrame("200,100,300,oops,450")

	var _, err = Calibrate(f, DefaultChannels())

	require.ErrorIs(t, err, ErrInvalidNumber)
	assert.Contains(t, err.Error(), "rf_reflected")
}

func TestFrameClamp(t *testing.T) {
	var f = Frame{"-3", "4", "-0.5", "x", "11"}

	assert.Equal(t, f, f.Clamp(false), "raw fields pass through untouched by default")
	assert.Equal(t, Frame{"0", "4", "0", "x", "11"}, f.Clamp(true))
}
