package client

// EventCode names the kinds of events a Client dispatches, continuing
// engine/core/events.go's SystemEventCode but trimmed to spec.md §4.7's
// set and renamed to match it.
type EventCode uint8

const (
	EventInit EventCode = iota
	EventFrame
	EventWindowResize
	EventMouse
	EventKeyboard
	EventTimer
	EventDestroy
)

// MouseAction mirrors glfw's press/release/repeat action values without
// importing glfw into every callback signature; KeyboardEvent uses it too.
type MouseAction uint8

const (
	ActionRelease MouseAction = iota
	ActionPress
	ActionRepeat
)

// MouseEvent is the payload delivered for EventMouse.
type MouseEvent struct {
	Button MouseAction
	Action MouseAction
	X, Y   float64
	Wheel  float64
}

// KeyboardEvent is the payload delivered for EventKeyboard.
type KeyboardEvent struct {
	Key    int
	Action MouseAction
	Mods   int
}

// ResizeEvent is the payload delivered for EventWindowResize.
type ResizeEvent struct {
	Width, Height int
}

// TimerEvent is the payload delivered for EventTimer.
type TimerEvent struct {
	TimerID uint32
	FireIdx uint32
	Time    float64
}

// Callback is invoked with an EventCode's payload (one of the *Event types
// above, or nil for EventInit/EventFrame/EventDestroy).
type Callback func(data any)

// CallbackMode selects whether a registered callback runs inline on the
// event thread (Sync) or is handed to the deq for the presenter thread to
// drain (Async), per spec.md §4.7.
type CallbackMode uint8

const (
	Sync CallbackMode = iota
	Async
)

const asyncQueue uint32 = 0

type registration struct {
	id   uint32
	mode CallbackMode
	fn   Callback
}
