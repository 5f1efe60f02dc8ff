package pamon

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPump(t *testing.T, src LineSource, out *syncBuffer) *Pump {
	t.Helper()

	return &Pump{
		Source:     src,
		Channels:   DefaultChannels(),
		Reporter:   NewReporter(out, DefaultChannels(), ClearNever, nil),
		Logger:     discardLogger(t),
		Metrics:    NewMetrics(),
		QueueDepth: 1,
	}
}

func TestPump_FansOut(t *testing.T) {
	var out syncBuffer
	var p = newTestPump(t, &scriptedSource{lines: []string{
		"boot\n",
		"7,8,9,10,11\n",
		"9,9\n",
	}}, &out)

	var a = p.Subscribe()
	var b = p.Subscribe()

	var err = p.Run(context.Background())
	require.ErrorIs(t, err, errSourceDone)

	for _, s := range []*Subscription{a, b} {
		var f, ok = <-s.C
		require.True(t, ok)
		assert.Equal(t, Frame{"7", "8", "9", "10", "11"}, f)

		_, ok = <-s.C
		assert.False(t, ok, "subscriptions close when the pump stops")
	}

	assert.Equal(t, "boot\nPA I:   7\nPA V:   8\nRF FWD: 9\nRF REF: 10\nG/R:    11\n", out.String())
	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.lines.WithLabelValues(LineMalformed)), 0)
	assert.Zero(t, p.Subscribers())
}

func TestPump_DropsForSlowSubscriber(t *testing.T) {
	var out syncBuffer
	var p = newTestPump(t, &scriptedSource{lines: []string{
		"1,1,1,1,1\n",
		"2,2,2,2,2\n",
	}}, &out)

	var s = p.Subscribe()

	_ = p.Run(context.Background())

	var f = <-s.C
	assert.Equal(t, "1", f[Compression], "the first frame was queued, the second dropped")
	assert.InDelta(t, 1, testutil.ToFloat64(p.Metrics.framesDropped), 0)
}

func TestPump_ClampRaw(t *testing.T) {
	var out syncBuffer
	var p = newTestPump(t, &scriptedSource{lines: []string{"7,8,9,10,-11\n"}}, &out)
	p.ClampRaw = true

	var s = p.Subscribe()

	_ = p.Run(context.Background())

	var f = <-s.C
	assert.Equal(t, "0", f[Compression])
}

func TestPump_UnsubscribeTwice(t *testing.T) {
	var p = newTestPump(t, newFeedSource(), new(syncBuffer))

	var s = p.Subscribe()
	p.Unsubscribe(s)
	p.Unsubscribe(s)

	var _, ok = <-s.C
	assert.False(t, ok)
}

func TestPump_SubscribeAfterStop(t *testing.T) {
	var src = newFeedSource()
	var p = newTestPump(t, src, new(syncBuffer))

	var ctx, cancel = context.WithCancel(context.Background())
	var done = make(chan error)
	go func() { done <- p.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pump did not stop")
	}

	var s = p.Subscribe()
	var _, ok = <-s.C
	assert.False(t, ok)
}
