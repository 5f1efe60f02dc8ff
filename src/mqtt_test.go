package pamon

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingPayload(t *testing.T) {
	var when = time.Date(2015, 6, 1, 7, 0, 0, 0, time.FixedZone("CDT", -5*3600))

	var p = NewReadingPayload(DefaultChannels(), exampleReading(t), when)

	var data, err = json.Marshal(p)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"timestamp": "2015-06-01T12:00:00Z",
		"values": {
			"pa_current": 0.839,
			"pa_voltage": 1.159,
			"rf_forward": 0.43,
			"rf_reflected": 0.085,
			"compression": 1.444
		}
	}`, string(data))
}

func TestMQTTPublisher_NotConnected(t *testing.T) {
	var cfg = DefaultConfig().MQTT
	cfg.Broker = "tcp://127.0.0.1:1"

	var pub = NewMQTTPublisher(cfg, DefaultChannels(), discardLogger(t))

	assert.Error(t, pub.Publish(exampleReading(t)))
}
