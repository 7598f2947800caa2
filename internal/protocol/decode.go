package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	ErrMalformed    = errors.New("malformed event")
	ErrMissingField = errors.New("missing required field")
)

// maxPreview bounds how much of an offending line ends up in logs.
const maxPreview = 120

// wireHeader is decoded first so that payloads of unknown types are never
// bound to typed fields.
type wireHeader struct {
	Type *string `json:"type"`
}

// wireEvent mirrors the JSON payload of known types. Pointers distinguish
// absent from zero.
type wireEvent struct {
	Sector     *int    `json:"sector"`
	Medication string  `json:"medication"`
	Item       string  `json:"item"`
	Enabled    *bool   `json:"enabled"`
	Direction  string  `json:"direction"`
	Time       *string `json:"time"`
	Minutes    int     `json:"minutes"`
}

// Decode parses one line into an Event. Unknown types decode successfully as
// KindUnknown whatever their other fields hold; malformed JSON and missing
// required fields return an error wrapping ErrMalformed or ErrMissingField.
func Decode(line string) (Event, error) {
	var h wireHeader
	if err := json.Unmarshal([]byte(line), &h); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if h.Type == nil || strings.TrimSpace(*h.Type) == "" {
		return Event{}, fmt.Errorf("%w: type", ErrMissingField)
	}
	typ := strings.TrimSpace(*h.Type)

	kind, ok := wireTypes[typ]
	if !ok {
		return Event{Kind: KindUnknown, Type: typ, Sector: NoSector}, nil
	}

	var w wireEvent
	if err := json.Unmarshal([]byte(line), &w); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	ev := Event{
		Kind:       kind,
		Type:       typ,
		Sector:     NoSector,
		Medication: strings.TrimSpace(w.Medication),
		Item:       strings.TrimSpace(w.Item),
		Minutes:    w.Minutes,
	}
	if w.Sector != nil {
		ev.Sector = *w.Sector
	}

	switch kind {
	case KindWheelHover, KindWheelSelectConfirm, KindDirectMedicationSelect, KindNurseEditMedicationSelect:
		if ev.Medication == "" {
			return Event{}, fmt.Errorf("%w: medication for %s", ErrMissingField, ev.Type)
		}
	case KindNurseWheelHover, KindNurseWheelSelectConfirm:
		// The event source labels nurse wheel hovers with "medication".
		if ev.Item == "" {
			ev.Item = ev.Medication
		}
		if ev.Item == "" {
			return Event{}, fmt.Errorf("%w: item for %s", ErrMissingField, ev.Type)
		}
	case KindGestureModeToggled:
		if w.Enabled == nil {
			return Event{}, fmt.Errorf("%w: enabled for %s", ErrMissingField, ev.Type)
		}
		ev.Enabled = *w.Enabled
	case KindGestureSwipe:
		switch d := Direction(strings.ToLower(strings.TrimSpace(w.Direction))); d {
		case SwipeLeft, SwipeRight:
			ev.Direction = d
		case "":
			return Event{}, fmt.Errorf("%w: direction for %s", ErrMissingField, ev.Type)
		default:
			return Event{}, fmt.Errorf("%w: unknown swipe direction %q", ErrMalformed, w.Direction)
		}
	case KindGestureTimeUpdate, KindGestureTimeFinal:
		if w.Time == nil {
			return Event{}, fmt.Errorf("%w: time for %s", ErrMissingField, ev.Type)
		}
		ev.Time = strings.TrimSpace(*w.Time)
	}
	return ev, nil
}

// Preview shortens line for log output.
func Preview(line string) string {
	if len(line) <= maxPreview {
		return line
	}
	cut := maxPreview
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut] + "..."
}
