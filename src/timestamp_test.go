package pamon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStamper(t *testing.T) {
	var s, err = NewStamper("%Y-%m-%d %H:%M:%S")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Date(2015, 6, 1, 7, 8, 9, 0, time.UTC) }

	assert.Equal(t, "2015-06-01 07:08:09 ", s.Prefix())
}

func TestStamper_Disabled(t *testing.T) {
	var s, err = NewStamper("")
	require.NoError(t, err)

	assert.Nil(t, s)
	assert.Empty(t, s.Prefix())
}
