package pamon

/*------------------------------------------------------------------
 *
 * Purpose:   	Single owner of the serial port for the network server.
 *
 * Description:	There is only one rig and one serial port.  Rather than
 *		letting every client connection read from the port, one
 *		goroutine reads, prints each record once, and hands a copy
 *		to every subscribed session.
 *
 *		A session that falls behind loses frames; it never slows
 *		the port or the other sessions.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// Subscription delivers accepted frames to one session.  C is closed when
// the pump stops.
type Subscription struct {
	C <-chan Frame

	c chan Frame
}

type Pump struct {
	Source   LineSource
	Channels [NumChannels]Channel
	Reporter *Reporter
	Logger   *log.Logger
	Metrics  *Metrics
	Sink     ReadingSink // optional

	// ClampRaw floors negative raw fields before they are shown or sent.
	ClampRaw bool
	// QueueDepth is the number of frames buffered per subscriber.
	QueueDepth int

	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	stopped bool
}

// Subscribe registers a new receiver.  After the pump has stopped the
// returned subscription is already closed.
func (p *Pump) Subscribe() *Subscription {
	var c = make(chan Frame, max(p.QueueDepth, 1))
	var s = &Subscription{C: c, c: c}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		close(c)
		return s
	}

	if p.subs == nil {
		p.subs = make(map[*Subscription]struct{})
	}
	p.subs[s] = struct{}{}

	return s
}

// Unsubscribe removes s and closes its channel.  Calling it twice, or after
// the pump stopped, is harmless.
func (p *Pump) Unsubscribe(s *Subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.subs[s]; ok {
		delete(p.subs, s)
		close(s.c)
	}
}

// Subscribers returns the number of sessions currently receiving frames.
func (p *Pump) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.subs)
}

// Run reads the source until ctx is done or a read fails, then closes
// every subscription.
func (p *Pump) Run(ctx context.Context) error {
	defer p.stop()

	for ctx.Err() == nil {
		var line, err = p.Source.ReadLine()
		if err != nil {
			return err
		}

		if err := p.handle(line); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pump) handle(line string) error {
	if line == "" {
		return nil
	}

	Printc(p.Logger, ColorRec, "serial line", "line", line)

	if !IsValidRecord(line, ServerMode) {
		p.Metrics.Line(LineRejected)
		return p.Reporter.Echo(line)
	}

	var f, err = DecodeFrame(line)
	if err != nil {
		// The line check only looks at the first character, so short
		// records get this far.  Nothing is sent for them.
		p.Metrics.Line(LineMalformed)
		p.Logger.Warn("dropping malformed record", "err", err)
		return nil
	}

	f = f.Clamp(p.ClampRaw)
	p.Metrics.Line(LineAccepted)

	if err := p.Reporter.ReportRaw(f); err != nil {
		return err
	}

	p.observe(f)
	p.broadcast(f)

	return nil
}

// observe feeds the calibrated values to metrics and the sink.  Clients
// always get the raw fields; calibration here is for monitoring only.
func (p *Pump) observe(f Frame) {
	var reading, err = Calibrate(f, p.Channels)
	if err != nil {
		p.Logger.Debug("record not calibrated", "err", err)
		return
	}

	p.Metrics.Observe(p.Channels, reading)

	if p.Sink != nil {
		if err := p.Sink.Publish(reading); err != nil {
			p.Logger.Debug("reading not published", "err", err)
		}
	}
}

func (p *Pump) broadcast(f Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for s := range p.subs {
		select {
		case s.c <- f:
		default:
			p.Metrics.FrameDropped()
			p.Logger.Warn("client queue full, frame dropped")
		}
	}
}

func (p *Pump) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopped = true
	for s := range p.subs {
		delete(p.subs, s)
		close(s.c)
	}
}
