package presentation

import (
	"sync"

	"bedside_terminal/internal/logger"
)

// Envelope types sent to subscribers.
const (
	EnvelopeStatus     = "status"
	EnvelopeLog        = "log"
	EnvelopeView       = "view"
	EnvelopeNotice     = "notice"
	EnvelopeNoticeHide = "notice_hide"
)

const defaultSubscriberBuffer = 64

// Envelope is one message on a subscriber stream.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub is a Sink that fans presentation output out to any number of
// subscribers (websocket renderers). A new subscriber first receives the
// current status, view and notice so it can draw without waiting for the
// next event.
type Hub struct {
	log    *logger.Logger
	buffer int

	mu     sync.Mutex
	subs   map[uint64]chan Envelope
	nextID uint64
	status *Status
	view   *View
	notice *Notice
}

var _ Sink = (*Hub)(nil)

// NewHub returns a hub whose subscriber queues hold buffer envelopes. A
// subscriber that falls further behind misses envelopes rather than stalling
// the terminal.
func NewHub(buffer int, log *logger.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{
		log:    log.Named("hub"),
		buffer: buffer,
		subs:   make(map[uint64]chan Envelope),
	}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Envelope, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Envelope, h.buffer+3)
	if h.status != nil {
		ch <- Envelope{Type: EnvelopeStatus, Data: *h.status}
	}
	if h.view != nil {
		ch <- Envelope{Type: EnvelopeView, Data: *h.view}
	}
	if h.notice != nil {
		ch <- Envelope{Type: EnvelopeNotice, Data: *h.notice}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Subscribers reports the number of registered subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// LastView returns the most recently rendered view.
func (h *Hub) LastView() (View, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.view == nil {
		return View{}, false
	}
	return *h.view, true
}

func (h *Hub) Status(connected bool, text string) {
	st := Status{Connected: connected, Text: text}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = &st
	h.publishLocked(Envelope{Type: EnvelopeStatus, Data: st})
}

func (h *Hub) Log(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.publishLocked(Envelope{Type: EnvelopeLog, Data: line})
}

func (h *Hub) Render(v View) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.view = &v
	h.publishLocked(Envelope{Type: EnvelopeView, Data: v})
}

func (h *Hub) ShowNotice(n Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notice = &n
	h.publishLocked(Envelope{Type: EnvelopeNotice, Data: n})
}

func (h *Hub) HideNotice() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.notice == nil {
		return
	}
	h.notice = nil
	h.publishLocked(Envelope{Type: EnvelopeNoticeHide})
}

func (h *Hub) publishLocked(env Envelope) {
	for id, ch := range h.subs {
		select {
		case ch <- env:
		default:
			h.log.Warnw("subscriber_lagging", "subscriber", id, "dropped", env.Type)
		}
	}
}
