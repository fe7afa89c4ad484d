// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies a translated event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Repeat bool
	Width  int
	Height int
	MouseX int
	MouseY int
	// DX, DY are the relative motion for mouse moves and the scroll
	// amount for wheel events.
	DX, DY float32
	Button uint8
}

// Input collects the events of one frame and tracks held mouse buttons.
type Input struct {
	events  []Event
	buttons map[uint8]bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events:  make([]Event, 0, 16),
		buttons: make(map[uint8]bool),
	}
}

// Update polls SDL events and translates them.
// Returns true if the application should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		e, ok := Translate(event)
		if !ok {
			continue
		}
		i.apply(e)
		if e.Type == EventQuit {
			quit = true
		}
	}
	return quit
}

// Feed records an already translated event. Used by Update and by tests.
func (i *Input) Feed(e Event) {
	i.apply(e)
}

func (i *Input) apply(e Event) {
	switch e.Type {
	case EventMouseDown:
		i.buttons[e.Button] = true
	case EventMouseUp:
		i.buttons[e.Button] = false
	}
	i.events = append(i.events, e)
}

// Translate converts an SDL event. ok is false for events the viewer
// ignores.
func Translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)}, true
		}

	case *sdl.KeyboardEvent:
		ev := Event{Key: e.Keysym.Scancode, Repeat: e.Repeat != 0}
		switch e.Type {
		case sdl.KEYDOWN:
			ev.Type = EventKeyDown
		case sdl.KEYUP:
			ev.Type = EventKeyUp
		default:
			return Event{}, false
		}
		return ev, true

	case *sdl.MouseMotionEvent:
		return Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			DX:     float32(e.XRel),
			DY:     float32(e.YRel),
		}, true

	case *sdl.MouseButtonEvent:
		ev := Event{MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}
		switch e.Type {
		case sdl.MOUSEBUTTONDOWN:
			ev.Type = EventMouseDown
		case sdl.MOUSEBUTTONUP:
			ev.Type = EventMouseUp
		default:
			return Event{}, false
		}
		return ev, true

	case *sdl.MouseWheelEvent:
		dy := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			dy = -dy
		}
		return Event{Type: EventMouseWheel, DX: float32(e.X), DY: dy}, true
	}
	return Event{}, false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed reports whether a key went down this frame, ignoring
// auto-repeat.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode && !e.Repeat {
			return true
		}
	}
	return false
}

// IsButtonDown reports whether a mouse button is currently held.
func (i *Input) IsButtonDown(button uint8) bool {
	return i.buttons[button]
}

// Drag returns the mouse motion accumulated this frame while button was held.
func (i *Input) Drag(button uint8) (dx, dy float32) {
	if !i.buttons[button] {
		return 0, 0
	}
	for _, e := range i.events {
		if e.Type == EventMouseMove {
			dx += e.DX
			dy += e.DY
		}
	}
	return dx, dy
}

// Wheel returns the scroll amount of this frame.
func (i *Input) Wheel() float32 {
	var dy float32
	for _, e := range i.events {
		if e.Type == EventMouseWheel {
			dy += e.DY
		}
	}
	return dy
}

// Reset clears the frame's events without polling.
func (i *Input) Reset() {
	i.events = i.events[:0]
}
