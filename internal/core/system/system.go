package system

import "time"

// Phase orders systems within a single frame.
type Phase int

const (
	PhaseInput      Phase = iota // 0: host input (unused by the headless host)
	PhasePreUpdate               // 1: deliver last frame's events
	PhaseUpdate                  // 2: resume the level's root task
	PhasePostUpdate              // 3: movement, despawn
	PhaseOutput                  // 4: spectator feed
	PhasePersist                 // 5: encounter journal flush
	PhaseCleanup                 // 6: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre_update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every per-frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
