package presentation

import "bedside_terminal/internal/logger"

// Sink consumes presentation output. Implementations must be safe for use
// from several goroutines: the stream reader, the terminal loop and notice
// timers all write to it.
type Sink interface {
	Status(connected bool, text string)
	Log(line string)
	Render(v View)
	ShowNotice(n Notice)
	HideNotice()
}

// Multi fans every call out to each sink in order.
type Multi []Sink

var _ Sink = Multi(nil)

func (m Multi) Status(connected bool, text string) {
	for _, s := range m {
		s.Status(connected, text)
	}
}

func (m Multi) Log(line string) {
	for _, s := range m {
		s.Log(line)
	}
}

func (m Multi) Render(v View) {
	for _, s := range m {
		s.Render(v)
	}
}

func (m Multi) ShowNotice(n Notice) {
	for _, s := range m {
		s.ShowNotice(n)
	}
}

func (m Multi) HideNotice() {
	for _, s := range m {
		s.HideNotice()
	}
}

// LogSink mirrors presentation output into the structured log. It is what the
// terminal shows when no renderer is attached.
type LogSink struct {
	log *logger.Logger
}

var _ Sink = (*LogSink)(nil)

func NewLogSink(log *logger.Logger) *LogSink {
	if log == nil {
		log = logger.NewNop()
	}
	return &LogSink{log: log.Named("screen")}
}

func (s *LogSink) Status(connected bool, text string) {
	s.log.Infow("status", "connected", connected, "text", text)
}

func (s *LogSink) Log(line string) {
	s.log.Infow("log_line", "line", line)
}

func (s *LogSink) Render(v View) {
	s.log.Debugw("render", "mode", v.Mode, "instruction", v.Instruction,
		"wheel_visible", v.Wheel.Visible, "wheel_kind", v.Wheel.Kind, "highlight", v.Wheel.Highlight,
		"panel_visible", v.Panel.Visible, "panel_kind", v.Panel.Kind)
}

func (s *LogSink) ShowNotice(n Notice) {
	s.log.Infow("notice_shown", "kind", n.Kind, "title", n.Title, "message", n.Message)
}

func (s *LogSink) HideNotice() {
	s.log.Debugw("notice_hidden")
}
