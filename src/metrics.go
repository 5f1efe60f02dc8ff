package pamon

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Line outcomes counted by Metrics.
const (
	LineAccepted  = "accepted"
	LineRejected  = "rejected"
	LineMalformed = "malformed"
)

// Metrics holds the Prometheus collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	lines          *prometheus.CounterVec
	channelValue   *prometheus.GaugeVec
	lastRecord     prometheus.Gauge
	sessions       *prometheus.CounterVec
	activeSessions prometheus.Gauge
	messagesSent   prometheus.Counter
	framesDropped  prometheus.Counter
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	var reg = prometheus.NewRegistry()
	var factory = promauto.With(reg)

	return &Metrics{
		registry: reg,
		lines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pamon_lines_total",
				Help: "Serial lines read, by outcome (accepted, rejected, malformed)",
			},
			[]string{"result"},
		),
		channelValue: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pamon_channel_value",
				Help: "Most recent calibrated value per telemetry channel",
			},
			[]string{"channel"},
		),
		lastRecord: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pamon_last_record_timestamp_seconds",
				Help: "Unix time of the most recent accepted record",
			},
		),
		sessions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pamon_sessions_total",
				Help: "Client connections, by outcome (streaming, handshake_error, refused)",
			},
			[]string{"outcome"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pamon_sessions_active",
				Help: "Client sessions currently streaming",
			},
		),
		messagesSent: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pamon_messages_sent_total",
				Help: "JSON messages written to clients",
			},
		),
		framesDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pamon_frames_dropped_total",
				Help: "Frames not delivered because a client queue was full",
			},
		),
	}
}

func (m *Metrics) Line(result string) {
	m.lines.WithLabelValues(result).Inc()
}

// Observe records a calibrated reading.
func (m *Metrics) Observe(channels [NumChannels]Channel, r Reading) {
	for i, ch := range channels {
		m.channelValue.WithLabelValues(ch.Name).Set(r[i].V)
	}
	m.lastRecord.SetToCurrentTime()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *log.Logger) error {
	var mux = http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	var srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		var shutdownCtx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (m *Metrics) FrameDropped() {
	m.framesDropped.Inc()
}

func (m *Metrics) Session(outcome string) {
	m.sessions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionStarted() {
	m.activeSessions.Inc()
}

func (m *Metrics) SessionEnded() {
	m.activeSessions.Dec()
}

func (m *Metrics) MessageSent() {
	m.messagesSent.Inc()
}
