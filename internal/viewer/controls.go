package viewer

import "github.com/veandco/go-sdl2/sdl"

// Action is what a key press asks the viewer loop to do beyond updating
// Controls itself.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionReset
	ActionWireframe
	ActionScreenshot
)

const (
	minSpeed = 0.125
	maxSpeed = 8
)

// Controls is the playback state driven by the keyboard.
type Controls struct {
	Paused bool
	Speed  float64
}

// Step converts a wall-clock delta into playback seconds.
func (c *Controls) Step(dt float64) float64 {
	if c.Paused {
		return 0
	}
	return dt * c.Speed
}

// Key applies a key press. Space toggles pause, +/- double or halve the
// speed, 0 restores normal speed.
func (c *Controls) Key(sc sdl.Scancode) Action {
	switch sc {
	case sdl.SCANCODE_ESCAPE:
		return ActionQuit
	case sdl.SCANCODE_SPACE:
		c.Paused = !c.Paused
	case sdl.SCANCODE_R:
		return ActionReset
	case sdl.SCANCODE_F:
		return ActionWireframe
	case sdl.SCANCODE_P:
		return ActionScreenshot
	case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
		c.Speed = clampSpeed(c.Speed * 2)
	case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
		c.Speed = clampSpeed(c.Speed / 2)
	case sdl.SCANCODE_0:
		c.Speed = 1
	}
	return ActionNone
}

func clampSpeed(s float64) float64 {
	if s <= 0 {
		return 1
	}
	if s < minSpeed {
		return minSpeed
	}
	if s > maxSpeed {
		return maxSpeed
	}
	return s
}
