package pamon

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Handler(t *testing.T) {
	var m = NewMetrics()

	m.Line(LineAccepted)
	m.Observe(DefaultChannels(), Reading{{V: 0.839}, {V: 1.159}, {V: 0.43}, {V: 0.085}, {V: 1.444}})
	m.Session(SessionStreaming)
	m.SessionStarted()
	m.MessageSent()

	var rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	var body = rec.Body.String()
	assert.Contains(t, body, `pamon_lines_total{result="accepted"} 1`)
	assert.Contains(t, body, `pamon_channel_value{channel="pa_current"} 0.839`)
	assert.Contains(t, body, `pamon_sessions_total{outcome="streaming"} 1`)
	assert.Contains(t, body, `pamon_sessions_active 1`)
	assert.Contains(t, body, `pamon_messages_sent_total 1`)
}
