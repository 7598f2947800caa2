package presentation

import (
	"sync"
	"time"
)

// NoticeTarget is the part of a Sink a Notifier drives.
type NoticeTarget interface {
	ShowNotice(n Notice)
	HideNotice()
}

// Notifier shows one notice at a time and hides it when its duration runs
// out. Showing a new notice replaces the current one and cancels its timer.
// Hide is idempotent.
type Notifier struct {
	target NoticeTarget

	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	visible bool
}

func NewNotifier(target NoticeTarget) *Notifier {
	return &Notifier{target: target}
}

func (n *Notifier) Show(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopLocked()
	n.visible = true
	n.target.ShowNotice(notice)

	if notice.Duration > 0 {
		gen := n.gen
		n.timer = time.AfterFunc(notice.Duration, func() { n.expire(gen) })
	}
}

// Hide dismisses the current notice, if any, and cancels its pending timer.
func (n *Notifier) Hide() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopLocked()
	if !n.visible {
		return
	}
	n.visible = false
	n.target.HideNotice()
}

func (n *Notifier) Visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.visible
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// A timer that lost the race with Show or Hide belongs to an older notice.
	if gen != n.gen || !n.visible {
		return
	}
	n.visible = false
	n.timer = nil
	n.target.HideNotice()
}

func (n *Notifier) stopLocked() {
	n.gen++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
