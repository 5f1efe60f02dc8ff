package pamon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ReadingSink receives every calibrated reading.
type ReadingSink interface {
	Publish(Reading) error
}

// ReadingPayload is the JSON document published per reading.
type ReadingPayload struct {
	Timestamp time.Time          `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

func NewReadingPayload(channels [NumChannels]Channel, r Reading, t time.Time) ReadingPayload {
	var p = ReadingPayload{
		Timestamp: t.UTC(),
		Values:    make(map[string]float64, NumChannels),
	}
	for i, ch := range channels {
		p.Values[ch.Name] = r[i].V
	}

	return p
}

// MQTTPublisher forwards readings to a broker.  Publishing never blocks the
// read loop; delivery failures are logged.
type MQTTPublisher struct {
	client   mqtt.Client
	topic    string
	channels [NumChannels]Channel
	logger   *log.Logger
}

func NewMQTTPublisher(cfg MQTTConfig, channels [NumChannels]Channel, logger *log.Logger) *MQTTPublisher {
	var opts = mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "err", err)
	})

	return &MQTTPublisher{
		client:   mqtt.NewClient(opts),
		topic:    cfg.Topic,
		channels: channels,
		logger:   logger,
	}
}

// Connect waits for the first connection, giving up when ctx is done.
// With connect retry enabled the client keeps trying in the background.
func (p *MQTTPublisher) Connect(ctx context.Context) error {
	var token = p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (p *MQTTPublisher) Publish(r Reading) error {
	if !p.client.IsConnectionOpen() {
		return errors.New("mqtt client not connected")
	}

	var data, err = json.Marshal(NewReadingPayload(p.channels, r, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	var token = p.client.Publish(p.topic, 0, false, data)

	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			p.logger.Warn("mqtt publish timed out", "topic", p.topic)
			return
		}
		if err := token.Error(); err != nil {
			p.logger.Warn("mqtt publish failed", "topic", p.topic, "err", err)
		}
	}()

	return nil
}

func (p *MQTTPublisher) Disconnect() {
	p.client.Disconnect(250)
}
