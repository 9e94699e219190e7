package system

import (
	"time"

	"github.com/l1jgo/director/internal/core/event"
	coresys "github.com/l1jgo/director/internal/core/system"
)

// EventDispatchSystem makes last frame's events readable and delivers them
// before any task runs. Phase 1 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
