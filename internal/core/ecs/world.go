package ecs

// World owns the entity pool, the component stores it strips on destroy and
// the end-of-frame destroy queue. Destroying is always deferred: tasks that observed an
// entity earlier in the frame keep seeing it until CleanupSystem flushes.
type World struct {
	pool         *EntityPool
	stores       []Removable
	destroyQueue []EntityID
	queued       map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		destroyQueue: make([]EntityID, 0, 32),
		queued:       make(map[EntityID]struct{}, 32),
	}
}

func (w *World) Pool() *EntityPool { return w.pool }

// Track adds a store that loses an entity's component when the entity is
// destroyed. Stores stay tracked for the World's lifetime.
func (w *World) Track(store Removable) {
	w.stores = append(w.stores, store)
}

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// MarkForDestruction queues id for the next flush. Queuing twice, or
// queuing a dead id, has no effect.
func (w *World) MarkForDestruction(id EntityID) {
	if !w.pool.Alive(id) {
		return
	}
	if _, ok := w.queued[id]; ok {
		return
	}
	w.queued[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending reports whether id is queued for destruction.
func (w *World) Pending(id EntityID) bool {
	_, ok := w.queued[id]
	return ok
}

// FlushDestroyQueue destroys queued entities in queue order, strips their
// components and calls onDestroyed for each after it is gone.
func (w *World) FlushDestroyQueue(onDestroyed func(EntityID)) int {
	n := len(w.destroyQueue)
	for _, id := range w.destroyQueue {
		for _, st := range w.stores {
			st.Remove(id)
		}
		w.pool.Destroy(id)
		delete(w.queued, id)
		if onDestroyed != nil {
			onDestroyed(id)
		}
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}
