package event

import "github.com/l1jgo/director/internal/core/ecs"

// EntityDestroyed is emitted when an entity leaves the world at the end of
// a frame. Subscribers see it at the start of the next frame.
type EntityDestroyed struct {
	ID        ecs.EntityID
	Archetype string
}

// EncounterPhaseChanged is emitted by the director on every state change.
type EncounterPhaseChanged struct {
	From string
	To   string
}
