// Package protocol decodes the line-delimited JSON events sent by the
// tabletop event source.
package protocol

// Kind identifies an event variant.
type Kind string

const (
	KindUnknown                   Kind = "unknown"
	KindWheelOpened               Kind = "wheel_opened"
	KindWheelHover                Kind = "wheel_hover"
	KindWheelSelectConfirm        Kind = "wheel_select_confirm"
	KindDirectMedicationSelect    Kind = "medication_select"
	KindBackPressed               Kind = "back_pressed"
	KindNurseWheelOpened          Kind = "nurse_wheel_opened"
	KindNurseWheelHover           Kind = "nurse_wheel_hover"
	KindNurseWheelSelectConfirm   Kind = "nurse_wheel_select_confirm"
	KindNurseEditMedicationSelect Kind = "nurse_edit_med_select"
	KindGestureModeToggled        Kind = "gesture_mode_toggled"
	KindGestureSwipe              Kind = "gesture_swipe"
	KindGestureTimeUpdate         Kind = "gesture_time_update"
	KindGestureTimeFinal          Kind = "gesture_time_final"
)

// NoSector is the sector value of events that carry none.
const NoSector = -1

// Direction of a gesture swipe.
type Direction string

const (
	SwipeLeft  Direction = "left"
	SwipeRight Direction = "right"
)

// Event is one decoded message. Only the fields relevant to Kind are set;
// Sector is NoSector when absent.
type Event struct {
	Kind Kind
	// Type is the raw wire tag, kept for logging unknown events.
	Type string

	Sector     int
	Medication string
	Item       string
	Enabled    bool
	Direction  Direction
	Time       string
	Minutes    int
}

// wireTypes maps every accepted wire tag, including the short aliases the
// event source emits, to its Kind.
var wireTypes = map[string]Kind{
	"wheel_opened":                 KindWheelOpened,
	"wheel_open":                   KindWheelOpened,
	"wheel_hover":                  KindWheelHover,
	"wheel_select_confirm":         KindWheelSelectConfirm,
	"medication_select":            KindDirectMedicationSelect,
	"direct_medication_select":     KindDirectMedicationSelect,
	"back_pressed":                 KindBackPressed,
	"nurse_wheel_opened":           KindNurseWheelOpened,
	"nurse_wheel_open":             KindNurseWheelOpened,
	"nurse_wheel_hover":            KindNurseWheelHover,
	"nurse_wheel_select_confirm":   KindNurseWheelSelectConfirm,
	"nurse_edit_med_select":        KindNurseEditMedicationSelect,
	"nurse_edit_medication_select": KindNurseEditMedicationSelect,
	"gesture_mode_toggled":         KindGestureModeToggled,
	"gesture_swipe":                KindGestureSwipe,
	"gesture_time_update":          KindGestureTimeUpdate,
	"gesture_time_final":           KindGestureTimeFinal,
}
