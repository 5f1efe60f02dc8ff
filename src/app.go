package pamon

/*------------------------------------------------------------------
 *
 * Purpose:   	Main programs for the console monitor and the network
 *		server.
 *
 * Description:	Both open the serial port named in the configuration,
 *		read until interrupted, then close the port and say
 *		goodbye.  The loops themselves live in monitor.go and
 *		pump.go; this file only wires the pieces together.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

// outputs are the pieces shared by both programs.
type outputs struct {
	channels [NumChannels]Channel
	reporter *Reporter
	metrics  *Metrics
	sink     ReadingSink
}

// startOutputs builds the reporter and starts the optional metrics server
// and MQTT publisher.  They stop when ctx is done.
func startOutputs(ctx context.Context, cfg Config, stdout io.Writer, logger *log.Logger) (*outputs, error) {
	var channels, err = cfg.Channels()
	if err != nil {
		return nil, err
	}

	var stamp, stampErr = NewStamper(cfg.Console.TimestampFormat)
	if stampErr != nil {
		return nil, stampErr
	}

	var o = &outputs{
		channels: channels,
		reporter: NewReporter(stdout, channels, cfg.Console.Clear, stamp),
		metrics:  NewMetrics(),
	}

	if cfg.Metrics.Listen != "" {
		go func() {
			if err := o.metrics.Serve(ctx, cfg.Metrics.Listen, logger); err != nil {
				logger.Error("metrics server failed", "err", err)
			}
		}()
	}

	if cfg.MQTT.Broker != "" {
		var pub = NewMQTTPublisher(cfg.MQTT, channels, logger)
		o.sink = pub

		go func() {
			if err := pub.Connect(ctx); err != nil && ctx.Err() == nil {
				logger.Error("mqtt connect failed", "err", err)
			}
			<-ctx.Done()
			pub.Disconnect()
		}()
	}

	return o, nil
}

// RunMonitor shows calibrated telemetry from src on stdout until ctx is done.
func RunMonitor(ctx context.Context, cfg Config, src LineSource, stdout io.Writer, logger *log.Logger) error {
	var o, err = startOutputs(ctx, cfg, stdout, logger)
	if err != nil {
		return err
	}

	var m = &Monitor{
		Source:   src,
		Channels: o.channels,
		Reporter: o.reporter,
		Policy:   cfg.Console.OnMalformed,
		Logger:   logger,
		Metrics:  o.metrics,
		Sink:     o.sink,
	}

	return m.Run(ctx)
}

// RunServer streams telemetry from src to clients accepted on ln until ctx
// is done or the source fails.
func RunServer(ctx context.Context, cfg Config, src LineSource, ln net.Listener, stdout io.Writer, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var o, err = startOutputs(ctx, cfg, stdout, logger)
	if err != nil {
		ln.Close()
		return err
	}

	var pump = &Pump{
		Source:     src,
		Channels:   o.channels,
		Reporter:   o.reporter,
		Logger:     logger,
		Metrics:    o.metrics,
		Sink:       o.sink,
		ClampRaw:   cfg.Server.ClampRaw,
		QueueDepth: cfg.Server.QueueDepth,
	}

	var srv = &Server{
		Pump:       pump,
		Logger:     logger,
		Metrics:    o.metrics,
		MaxClients: cfg.Server.MaxClients,
	}

	if cfg.DNSSD.Enabled {
		if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
			if err := AnnounceDNSSD(ctx, cfg.DNSSD.Name, tcp.Port, logger); err != nil {
				logger.Error("dns-sd announcement failed", "err", err)
			}
		}
	}

	var pumpErr = make(chan error, 1)
	go func() {
		var err = pump.Run(ctx)
		cancel()
		pumpErr <- err
	}()

	var serveErr = srv.Serve(ctx, ln)
	cancel()

	return errors.Join(<-pumpErr, serveErr)
}

// MonitorMain is the console program.  It returns the process exit code.
func MonitorMain(args []string) int {
	return runMain("pamon", ConsoleMode, args, func(ctx context.Context, cfg Config, port *SerialPort, logger *log.Logger) error {
		return RunMonitor(ctx, cfg, port, os.Stdout, logger)
	})
}

// ServerMain is the network server program.  It returns the process exit code.
func ServerMain(args []string) int {
	return runMain("pamon-server", ServerMode, args, func(ctx context.Context, cfg Config, port *SerialPort, logger *log.Logger) error {
		var ln, err = Listen(ctx, cfg.Server.Listen)
		if err != nil {
			return err
		}

		return RunServer(ctx, cfg, port, ln, os.Stdout, logger)
	})
}

type runFunc func(ctx context.Context, cfg Config, port *SerialPort, logger *log.Logger) error

func runMain(program string, mode Mode, args []string, run runFunc) int {
	var opts, err = ParseOptions(program, mode, args, os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", program, err)
		return 1
	}

	if opts.Version {
		PrintVersion(os.Stdout, program, opts.VerboseVersion)
		return 0
	}

	if opts.ListPorts {
		var ports, err = ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", program, err)
			return 1
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return 0
	}

	var cfg = opts.Config

	var logger, logErr = NewLogger(os.Stderr, cfg.Log.Level)
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", program, logErr)
		return 1
	}

	logger.Info("starting",
		"mode", mode.String(),
		"device", cfg.Serial.Device,
		"baud", cfg.Serial.Baud,
	)

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var port, openErr = OpenSerialPort(cfg.Serial.Device, cfg.Serial.Baud, cfg.Serial.ReadTimeout)
	if openErr != nil {
		logger.Error("cannot start", "err", openErr)
		return 1
	}

	var runErr = run(ctx, cfg, port, logger)

	if err := port.Close(); err != nil {
		logger.Warn("closing serial port", "err", err)
	}

	if runErr != nil {
		logger.Error("stopped", "err", runErr)
		return 1
	}

	fmt.Println("Exiting...")

	return 0
}
