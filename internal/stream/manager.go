// Package stream keeps the terminal connected to the event source and turns
// the byte stream into decoded events.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"bedside_terminal/internal/logger"
	"bedside_terminal/internal/metrics"
	"bedside_terminal/internal/protocol"
)

// Defaults applied when Config leaves a field zero.
const (
	DefaultRetryInterval = 2 * time.Second
	DefaultDialTimeout   = 5 * time.Second
	DefaultReadBuffer    = 4096
	DefaultMaxLineBytes  = 64 << 10
)

// Reporter receives connection status and user-visible log lines.
type Reporter interface {
	Status(connected bool, text string)
	Log(line string)
}

// Dialer opens the stream connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type Config struct {
	Addr          string
	RetryInterval time.Duration
	DialTimeout   time.Duration
	ReadBuffer    int
	MaxLineBytes  int
}

// Manager owns the connection to the event source. It reconnects after a
// fixed delay forever and never returns an error to its caller.
type Manager struct {
	cfg      Config
	dialer   Dialer
	reporter Reporter
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func NewManager(cfg Config, dialer Dialer, reporter Reporter, log *logger.Logger, m *metrics.Metrics) *Manager {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadBuffer <= 0 {
		cfg.ReadBuffer = DefaultReadBuffer
	}
	if cfg.MaxLineBytes == 0 {
		cfg.MaxLineBytes = DefaultMaxLineBytes
	}
	if dialer == nil {
		dialer = &net.Dialer{Timeout: cfg.DialTimeout}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{cfg: cfg, dialer: dialer, reporter: reporter, log: log, metrics: m}
}

// Run connects, reads and reconnects until ctx is canceled. Decoded events are
// sent to out in arrival order; Run never closes out.
func (m *Manager) Run(ctx context.Context, out chan<- protocol.Event) {
	for ctx.Err() == nil {
		m.metrics.ConnectAttempt()
		conn, err := m.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.metrics.ConnectFailure()
			m.log.Warnw("stream_connect_failed", "addr", m.cfg.Addr, "err", err, "retry_in", m.cfg.RetryInterval)
			m.reporter.Status(false, fmt.Sprintf("Cannot reach %s, retrying in %s", m.cfg.Addr, m.cfg.RetryInterval))
			if !sleep(ctx, m.cfg.RetryInterval) {
				return
			}
			continue
		}

		m.metrics.SetConnected(true)
		m.log.Infow("stream_connected", "addr", m.cfg.Addr)
		m.reporter.Status(true, "Connected to "+m.cfg.Addr)

		err = m.consume(ctx, conn, out)

		m.metrics.SetConnected(false)
		if ctx.Err() != nil {
			return
		}
		m.log.Warnw("stream_disconnected", "addr", m.cfg.Addr, "err", err, "retry_in", m.cfg.RetryInterval)
		m.reporter.Status(false, "Disconnected from "+m.cfg.Addr)
		if !sleep(ctx, m.cfg.RetryInterval) {
			return
		}
	}
}

func (m *Manager) dial(ctx context.Context) (net.Conn, error) {
	dctx, cancel := context.WithTimeout(ctx, m.cfg.DialTimeout)
	defer cancel()
	return m.dialer.DialContext(dctx, "tcp", m.cfg.Addr)
}

var errZeroRead = errors.New("zero-byte read")

// consume reads conn until the stream ends. The connection is always closed
// before consume returns.
func (m *Manager) consume(ctx context.Context, conn net.Conn, out chan<- protocol.Event) error {
	done := make(chan struct{})
	defer func() {
		close(done)
		_ = conn.Close()
	}()
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	framer := NewFramer(m.cfg.MaxLineBytes)
	buf := make([]byte, m.cfg.ReadBuffer)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			m.metrics.BytesRead(n)
			lines, overflowed := framer.Feed(buf[:n])
			if overflowed {
				m.metrics.LineDropped("oversized")
				m.log.Warnw("stream_line_oversized", "limit", m.cfg.MaxLineBytes)
				m.reporter.Log(fmt.Sprintf("Dropped message longer than %d bytes", m.cfg.MaxLineBytes))
			}
			for _, line := range lines {
				if !m.dispatch(ctx, line, out) {
					return ctx.Err()
				}
			}
		}
		switch {
		case errors.Is(err, io.EOF):
			return io.EOF
		case err != nil:
			return err
		case n == 0:
			return errZeroRead
		}
	}
}

// dispatch decodes one line and forwards it. It returns false only when ctx
// is canceled while waiting for the consumer.
func (m *Manager) dispatch(ctx context.Context, line string, out chan<- protocol.Event) bool {
	m.metrics.LineReceived()
	ev, err := protocol.Decode(line)
	if err != nil {
		preview := protocol.Preview(line)
		m.metrics.LineDropped("malformed")
		m.log.Warnw("decode_failed", "err", err, "line", preview)
		m.reporter.Log("Dropped malformed message: " + preview)
		return true
	}
	if ev.Kind == protocol.KindUnknown {
		m.metrics.LineDropped("unknown_type")
		m.log.Debugw("event_ignored", "type", ev.Type)
		return true
	}
	m.metrics.EventDecoded(string(ev.Kind))

	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
