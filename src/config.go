package pamon

/*------------------------------------------------------------------
 *
 * Purpose:   	Configuration for the monitor and the network server.
 *
 * Description:	Everything has a built-in default matching the rig as
 *		deployed, so no file is needed.  A YAML file may override
 *		any part of it, and command line options override the file.
 *
 *---------------------------------------------------------------*/

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// What to do with a record that passes the line check but will not decode.
type MalformedPolicy string

const (
	MalformedHalt MalformedPolicy = "halt"
	MalformedSkip MalformedPolicy = "skip"
)

type Config struct {
	Serial      SerialConfig               `yaml:"serial"`
	Server      ServerConfig               `yaml:"server"`
	DNSSD       DNSSDConfig                `yaml:"dns_sd"`
	Console     ConsoleConfig              `yaml:"console"`
	Calibration map[string]ChannelOverride `yaml:"calibration"`
	Metrics     MetricsConfig              `yaml:"metrics"`
	MQTT        MQTTConfig                 `yaml:"mqtt"`
	Log         LogConfig                  `yaml:"log"`
}

type SerialConfig struct {
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

type ServerConfig struct {
	Listen     string `yaml:"listen"`
	MaxClients int    `yaml:"max_clients"`
	QueueDepth int    `yaml:"queue_depth"`
	ClampRaw   bool   `yaml:"clamp_raw"`
}

type DNSSDConfig struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
}

type ConsoleConfig struct {
	Clear           ClearPolicy     `yaml:"clear"`
	TimestampFormat string          `yaml:"timestamp_format"`
	OnMalformed     MalformedPolicy `yaml:"on_malformed"`
}

// ChannelOverride replaces parts of one built-in channel calibration.
type ChannelOverride struct {
	Label       *string  `yaml:"label"`
	Coefficient *float64 `yaml:"coefficient"`
	Offset      *float64 `yaml:"offset"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration of the rig as deployed.
func DefaultConfig() Config {
	return Config{
		Serial: SerialConfig{
			Device:      "/dev/ttyUSB1",
			Baud:        9600,
			ReadTimeout: time.Second,
		},
		Server: ServerConfig{
			Listen:     "127.0.0.1:5005",
			MaxClients: MaxNetClients,
			QueueDepth: 16,
		},
		Console: ConsoleConfig{
			Clear:       ClearAuto,
			OnMalformed: MalformedHalt,
		},
		MQTT: MQTTConfig{
			Topic:    "pamon/telemetry",
			ClientID: "pamon",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads a YAML file on top of the defaults.  Unknown keys are
// rejected so a typo does not silently leave a default in place.
func LoadConfig(path string) (Config, error) {
	var cfg = DefaultConfig()

	var data, readErr = os.ReadFile(path)
	if readErr != nil {
		return cfg, fmt.Errorf("read config file: %w", readErr)
	}

	var dec = yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Channels returns the calibration table with any overrides applied.
func (c Config) Channels() ([NumChannels]Channel, error) {
	var channels = DefaultChannels()

	for name, o := range c.Calibration {
		var i = channelIndex(channels, name)
		if i < 0 {
			return channels, fmt.Errorf("unknown calibration channel %q", name)
		}

		if o.Label != nil {
			channels[i].Label = *o.Label
		}
		if o.Coefficient != nil {
			channels[i].Coefficient = *o.Coefficient
		}
		if o.Offset != nil {
			channels[i].Offset = *o.Offset
		}
	}

	return channels, nil
}

func channelIndex(channels [NumChannels]Channel, name string) int {
	for i, ch := range channels {
		if ch.Name == name {
			return i
		}
	}

	return -1
}

// Validate checks the values that would otherwise fail far from their source.
func (c Config) Validate() error {
	var errs []error

	if c.Serial.Device == "" {
		errs = append(errs, errors.New("serial device must be set"))
	}
	if !SupportedBaud(c.Serial.Baud) {
		errs = append(errs, fmt.Errorf("%w: %d", ErrUnsupportedBaud, c.Serial.Baud))
	}
	if c.Serial.ReadTimeout <= 0 || c.Serial.ReadTimeout > MaxReadTimeout {
		errs = append(errs, fmt.Errorf("serial read_timeout must be between 0 and %v, got %v", MaxReadTimeout, c.Serial.ReadTimeout))
	}

	if c.Server.MaxClients < 1 {
		errs = append(errs, fmt.Errorf("server max_clients must be at least 1, got %d", c.Server.MaxClients))
	}
	if c.Server.QueueDepth < 1 {
		errs = append(errs, fmt.Errorf("server queue_depth must be at least 1, got %d", c.Server.QueueDepth))
	}

	switch c.Console.Clear {
	case ClearAuto, ClearAlways, ClearNever:
	default:
		errs = append(errs, fmt.Errorf("invalid console clear %q (allowed: auto, always, never)", c.Console.Clear))
	}

	switch c.Console.OnMalformed {
	case MalformedHalt, MalformedSkip:
	default:
		errs = append(errs, fmt.Errorf("invalid console on_malformed %q (allowed: halt, skip)", c.Console.OnMalformed))
	}

	if _, err := log.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", c.Log.Level))
	}

	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		errs = append(errs, errors.New("mqtt topic must be set when a broker is configured"))
	}

	var channels, chErr = c.Channels()
	if chErr != nil {
		errs = append(errs, chErr)
	} else {
		for _, ch := range channels {
			if ch.Coefficient == 0 {
				errs = append(errs, fmt.Errorf("%w: channel %s", ErrZeroCoefficient, ch.Name))
			}
		}
	}

	return errors.Join(errs...)
}
