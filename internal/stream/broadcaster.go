package stream

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"bedside_terminal/internal/logger"
)

const broadcastWriteTimeout = 2 * time.Second

// Broadcaster is the sending side of the protocol: it accepts terminal
// connections and writes every broadcast line to all of them. cmd/eventsim
// uses it to stand in for the tabletop event source.
type Broadcaster struct {
	log *logger.Logger

	mu      sync.Mutex
	clients map[net.Conn]struct{}
}

func NewBroadcaster(log *logger.Logger) *Broadcaster {
	if log == nil {
		log = logger.NewNop()
	}
	return &Broadcaster{log: log, clients: make(map[net.Conn]struct{})}
}

// Serve accepts connections on ln until ctx is canceled or ln fails.
func (b *Broadcaster) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	defer b.closeAll()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		b.mu.Lock()
		b.clients[conn] = struct{}{}
		b.mu.Unlock()
		b.log.Infow("client_connected", "remote", conn.RemoteAddr().String())
		go b.drain(conn)
	}
}

// drain discards anything the client sends and unregisters it on close.
func (b *Broadcaster) drain(conn net.Conn) {
	buf := make([]byte, 1024)
	for {
		if _, err := conn.Read(buf); err != nil {
			break
		}
	}
	b.remove(conn)
}

func (b *Broadcaster) remove(conn net.Conn) {
	b.mu.Lock()
	_, ok := b.clients[conn]
	delete(b.clients, conn)
	b.mu.Unlock()
	if ok {
		_ = conn.Close()
		b.log.Infow("client_disconnected", "remote", conn.RemoteAddr().String())
	}
}

// Broadcast writes line, newline-terminated, to every client and drops the
// ones that fail. It returns how many clients received the line.
func (b *Broadcaster) Broadcast(line string) int {
	data := []byte(strings.TrimRight(line, "\r\n") + "\n")

	b.mu.Lock()
	conns := make([]net.Conn, 0, len(b.clients))
	for c := range b.clients {
		conns = append(conns, c)
	}
	b.mu.Unlock()

	sent := 0
	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(broadcastWriteTimeout))
		if _, err := c.Write(data); err != nil {
			b.log.Warnw("client_send_failed", "remote", c.RemoteAddr().String(), "err", err)
			b.remove(c)
			continue
		}
		sent++
	}
	return sent
}

// Clients returns the number of connected clients.
func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *Broadcaster) closeAll() {
	b.mu.Lock()
	conns := b.clients
	b.clients = make(map[net.Conn]struct{})
	b.mu.Unlock()
	for c := range conns {
		_ = c.Close()
	}
}
