package pamon

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// Options is the parsed command line.
type Options struct {
	Config         Config
	ListPorts      bool
	Version        bool
	VerboseVersion bool
}

// ParseOptions builds the configuration from defaults, the optional config
// file and then the command line, in that order of precedence.  -h returns
// pflag.ErrHelp after printing usage to stderr.
func ParseOptions(program string, mode Mode, args []string, stderr io.Writer) (Options, error) {
	var fs = pflag.NewFlagSet(program, pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var def = DefaultConfig()

	var configFile = fs.StringP("config-file", "c", "", "Configuration file name (YAML).")
	var device = fs.StringP("device", "D", def.Serial.Device, "Serial port device connected to the rig.")
	var serialSpeed = fs.IntP("serial-speed", "s", def.Serial.Baud, "Serial port speed.  0 leaves the port alone.")
	var readTimeout = fs.Duration("read-timeout", def.Serial.ReadTimeout, "Serial read timeout.")
	var timestampFormat = fs.StringP("timestamp-format", "T", "", "Precede output with 'strftime' format time stamp.")
	var clearMode = fs.String("clear", string(def.Console.Clear), "Clear the screen before each record: auto, always, never.")
	var metricsListen = fs.String("metrics-listen", "", "Serve Prometheus metrics on this address, e.g. :9100.")
	var mqttBroker = fs.String("mqtt-broker", "", "Publish calibrated readings to this MQTT broker, e.g. tcp://localhost:1883.")
	var mqttTopic = fs.String("mqtt-topic", def.MQTT.Topic, "MQTT topic for readings.")
	var logLevel = fs.String("log-level", def.Log.Level, "Log level: debug, info, warn, error.")
	var debug = fs.BoolP("debug", "d", false, "Debug output.  Same as --log-level=debug.")
	var quiet = fs.BoolP("quiet", "q", false, "Only warnings and errors.  Same as --log-level=warn.")
	var listPorts = fs.Bool("list-ports", false, "List serial ports and exit.")
	var version = fs.BoolP("version", "v", false, "Print version and exit.")
	var buildInfo = fs.Bool("build-info", false, "With --version, also list the Go version and modules compiled in.")

	// Mode specific options stay at their zero value when not registered.
	var (
		onMalformed = new(string)
		listen      = new(string)
		maxClients  = new(int)
		clampRaw    = new(bool)
		dnsSD       = new(bool)
		dnsSDName   = new(string)
	)

	switch mode {
	case ConsoleMode:
		onMalformed = fs.String("on-malformed", string(def.Console.OnMalformed),
			"What to do with a record that will not decode: halt, skip.")
	case ServerMode:
		listen = fs.StringP("listen", "l", def.Server.Listen, "TCP address to accept clients on.")
		maxClients = fs.IntP("max-clients", "m", def.Server.MaxClients, "Maximum simultaneous clients.")
		clampRaw = fs.Bool("clamp-raw", false, "Floor negative raw fields at 0 before sending.")
		dnsSD = fs.Bool("dns-sd", false, "Announce the service with DNS-SD.")
		dnsSDName = fs.String("dns-sd-name", "", "DNS-SD service name.  Default \"pamon on <hostname>\".")
	}

	fs.Usage = func() {
		fmt.Fprintf(stderr, "%s - RF power amplifier telemetry monitor (%s).\n", program, mode)
		fmt.Fprintf(stderr, "\n")
		fmt.Fprintf(stderr, "Usage: %s [options]\n", program)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	if fs.NArg() > 0 {
		fs.Usage()
		return Options{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	var cfg = def
	if *configFile != "" {
		var loaded, err = LoadConfig(*configFile)
		if err != nil {
			return Options{}, err
		}
		cfg = loaded
	}

	var set = func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}

	set("device", func() { cfg.Serial.Device = *device })
	set("serial-speed", func() { cfg.Serial.Baud = *serialSpeed })
	set("read-timeout", func() { cfg.Serial.ReadTimeout = *readTimeout })
	set("timestamp-format", func() { cfg.Console.TimestampFormat = *timestampFormat })
	set("clear", func() { cfg.Console.Clear = ClearPolicy(*clearMode) })
	set("metrics-listen", func() { cfg.Metrics.Listen = *metricsListen })
	set("mqtt-broker", func() { cfg.MQTT.Broker = *mqttBroker })
	set("mqtt-topic", func() { cfg.MQTT.Topic = *mqttTopic })
	set("log-level", func() { cfg.Log.Level = *logLevel })
	set("on-malformed", func() { cfg.Console.OnMalformed = MalformedPolicy(*onMalformed) })
	set("listen", func() { cfg.Server.Listen = *listen })
	set("max-clients", func() { cfg.Server.MaxClients = *maxClients })
	set("clamp-raw", func() { cfg.Server.ClampRaw = *clampRaw })
	set("dns-sd", func() { cfg.DNSSD.Enabled = *dnsSD })
	set("dns-sd-name", func() { cfg.DNSSD.Name = *dnsSDName })

	switch {
	case *debug:
		cfg.Log.Level = "debug"
	case *quiet:
		cfg.Log.Level = "warn"
	}

	if err := cfg.Validate(); err != nil {
		return Options{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return Options{
		Config:         cfg,
		ListPorts:      *listPorts,
		Version:        *version,
		VerboseVersion: *buildInfo,
	}, nil
}
