// Package level holds the per-level context shared by the orchestrator and
// its child tasks.
package level

import "github.com/l1jgo/director/internal/scene"

// Fader is the screen shader the fade transition drives.
type Fader interface {
	SetFloatParam(name string, value float64)
}

// State is created once per level by the orchestrator and passed to every
// task that needs it. Boundary and FloorY are written at level start only.
type State struct {
	Boundary scene.Rect2
	FloorY   float64
	Paused   bool
	Fade     Fader

	fading bool
}

// NewState returns a level with the default 896x144 boundary.
func NewState(fade Fader) *State {
	return &State{
		Boundary: scene.Rect2{W: 896, H: 144},
		Fade:     fade,
	}
}

// Fading reports whether a fade transition is running.
func (s *State) Fading() bool { return s.fading }
