package handlers

import (
	"net/http"
	"strconv"
	"time"

	"bedside_terminal/internal/presentation"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	maxInterval      = 10 * time.Minute
	maxIntervalMilli = 600_000
)

// envelopeSession carries a full session snapshot, sent on request at a fixed
// interval so a renderer can resynchronise after missing envelopes.
const envelopeSession = "session"

// Upgrader for HTTP -> WebSocket. The terminal serves renderers on the same
// bedside machine, so any origin is accepted.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConnect streams presentation envelopes from the hub to one renderer.
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	envelopes, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	var snapshots <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		snapshots = ticker.C
	}

	if h.log != nil {
		h.log.Infow("ws_renderer_connected", "remote", c.ClientIP())
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case env, ok := <-envelopes:
			if !ok {
				return
			}
			if err := h.send(conn, env); err != nil {
				return
			}
		case <-snapshots:
			if h.services.Terminal == nil {
				continue
			}
			env := presentation.Envelope{Type: envelopeSession, Data: h.services.Terminal.Snapshot()}
			if err := h.send(conn, env); err != nil {
				return
			}
		}
	}
}

// parseInterval reads ?interval=30s or ?interval_ms=30000 for periodic session
// snapshots. Zero (the default) disables them.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return 0
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// send writes env with a write deadline.
func (h *Handler) send(conn *websocket.Conn, env presentation.Envelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(env); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed", "err", err, "type", env.Type)
		}
		return err
	}
	return nil
}
