package pamon

/*------------------------------------------------------------------
 *
 * Purpose:   	Serve telemetry to client applications over TCP.
 *
 * Description:	A client connects, sends one JSON message as a handshake,
 *		then receives two JSON messages for every record from the
 *		rig:
 *
 *			{"return": "ok"}
 *			{"Compression": "<raw value>"}
 *
 *		A bad handshake ends that connection only.  Up to
 *		MaxClients sessions are served at once; further
 *		connections are closed immediately.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Default limit on simultaneous clients.
const MaxNetClients = 3

type Server struct {
	Pump       *Pump
	Logger     *log.Logger
	Metrics    *Metrics
	MaxClients int

	slots chan struct{}
	wg    sync.WaitGroup
}

// Listen opens the TCP listener.  Split from Serve so the caller can learn
// the bound address before accepting.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig

	var ln, err = lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	return ln, nil
}

// Serve accepts connections until ctx is done, then closes the listener
// and waits for open sessions to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.slots = make(chan struct{}, max(s.MaxClients, 1))

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	defer s.wg.Wait()

	s.Logger.Info("ready to accept client applications", "addr", ln.Addr().String(), "max_clients", cap(s.slots))

	for {
		var conn, err = ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.Logger.Error("accept failed", "err", err)
			continue
		}

		select {
		case s.slots <- struct{}{}:
			s.wg.Add(1)
			go func() {
				defer func() {
					<-s.slots
					s.wg.Done()
				}()
				s.handle(ctx, conn)
			}()
		default:
			s.Metrics.Session(SessionRefused)
			s.Logger.Warn("refusing client", "remote", conn.RemoteAddr().String(), "err", ErrTooManyClients)
			conn.Close()
		}
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	var logger = s.Logger.With("session", uuid.NewString(), "remote", conn.RemoteAddr().String())

	var done = make(chan struct{})
	defer close(done)

	// Unblock any read or write when the server shuts down.
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()

	logger.Info("attached to client application")

	var hello, err = ReadHandshake(conn)
	if err != nil {
		s.Metrics.Session(SessionHandshakeError)
		logger.Warn("closing connection", "err", err)
		return
	}

	logger.Info("handshake", "message", hello)
	s.Metrics.Session(SessionStreaming)

	var sub = s.Pump.Subscribe()
	defer s.Pump.Unsubscribe(sub)

	// Nothing more is expected from the client, but keep reading so a
	// hang up is seen even when no records are flowing.  That ends the
	// stream and frees the slot.
	go func() {
		var _, err = io.Copy(io.Discard, conn)
		logger.Debug("client stopped sending", "err", err)
		s.Pump.Unsubscribe(sub)
	}()

	s.Metrics.SessionStarted()
	defer s.Metrics.SessionEnded()

	var sent = func() {
		s.Metrics.MessageSent()
		Printc(logger, ColorXmit, "sent message")
	}

	if err := StreamFrames(conn, sub, sent); err != nil && ctx.Err() == nil {
		logger.Info("client went away", "err", err)
		return
	}

	logger.Info("session closed")
}
