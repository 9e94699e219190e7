package scene

import (
	"github.com/l1jgo/director/internal/core/ecs"
	"github.com/l1jgo/director/internal/core/event"
)

// EventDestroyed is the only event name nodes publish.
const EventDestroyed = "destroyed"

// Node is an entity in the scene graph. Position, ZIndex, DrawRegion and
// Texture are plain fields: callers mutate them directly, like the engine
// properties they stand in for.
type Node struct {
	ID         ecs.EntityID
	Name       string
	Archetype  string
	Position   Vec2
	ZIndex     int
	DrawRegion Rect2
	Texture    string

	parent   *Node
	children []*Node
}

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return n.children }

// Motion is a constant velocity the headless simulation applies each frame.
type Motion struct {
	Velocity Vec2
}

type subscription struct {
	event string
	owner ecs.EntityID
	fn    func(*Node)
}

// Scene is an in-memory scene graph host. It allocates entities from an
// ecs.World, defers destruction to the end of the frame and reports
// "destroyed" to subscribers at the start of the next one through the bus.
// Everything runs on the game loop goroutine.
type Scene struct {
	world  *ecs.World
	nodes  *ecs.PtrComponentStore[Node]
	motion *ecs.PtrComponentStore[Motion]
	bus    *event.Bus

	subs    map[ecs.EntityID][]subscription
	pending map[ecs.EntityID]*Node // queued, not yet flushed
	dying   map[ecs.EntityID]*Node // flushed, notification not yet delivered

	root   *Node
	camera *Camera
}

// New creates a scene with a root node named "Main" and subscribes it to
// entity destruction on bus.
func New(bus *event.Bus) *Scene {
	w := ecs.NewWorld()
	s := &Scene{
		world:   w,
		nodes:   ecs.NewPtrComponentStore[Node](),
		motion:  ecs.NewPtrComponentStore[Motion](),
		bus:     bus,
		subs:    make(map[ecs.EntityID][]subscription),
		pending: make(map[ecs.EntityID]*Node),
		dying:   make(map[ecs.EntityID]*Node),
		camera:  &Camera{},
	}
	w.Track(s.nodes)
	w.Track(s.motion)
	s.root = s.NewNode("Main")
	event.Subscribe(bus, s.onDestroyed)
	return s
}

func (s *Scene) Root() *Node     { return s.root }
func (s *Scene) Camera() *Camera { return s.camera }
func (s *Scene) Bus() *event.Bus { return s.bus }
func (s *Scene) Len() int        { return s.nodes.Len() }

// NewNode creates a detached, named node with no archetype.
func (s *Scene) NewNode(name string) *Node {
	n := &Node{ID: s.world.CreateEntity(), Name: name}
	s.nodes.Set(n.ID, n)
	return n
}

// CreateInstance creates a detached node for an archetype id.
func (s *Scene) CreateInstance(archetype string) *Node {
	n := s.NewNode(archetype)
	n.Archetype = archetype
	return n
}

// AddChild attaches child under parent, detaching it from any previous one.
func (s *Scene) AddChild(parent, child *Node) {
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = parent
	parent.children = append(parent.children, child)
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// FindChild returns the first direct child of parent named name.
func (s *Scene) FindChild(parent *Node, name string) *Node {
	for _, c := range parent.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Alive reports whether n is in the scene and not queued for destruction.
func (s *Scene) Alive(n *Node) bool {
	return n != nil && s.world.Alive(n.ID) && !s.world.Pending(n.ID)
}

// Subscribe calls fn with n when n publishes event. owner identifies the
// subscriber for Unsubscribe.
func (s *Scene) Subscribe(n *Node, ev string, owner *Node, fn func(*Node)) {
	var ownerID ecs.EntityID
	if owner != nil {
		ownerID = owner.ID
	}
	s.subs[n.ID] = append(s.subs[n.ID], subscription{event: ev, owner: ownerID, fn: fn})
}

// Unsubscribe drops every subscription owner holds on n.
func (s *Scene) Unsubscribe(n *Node, owner *Node) {
	subs := s.subs[n.ID]
	kept := subs[:0]
	for _, sub := range subs {
		if owner == nil || sub.owner != owner.ID {
			kept = append(kept, sub)
		}
	}
	if len(kept) == 0 {
		delete(s.subs, n.ID)
		return
	}
	s.subs[n.ID] = kept
}

// Destroy queues n and its descendants for removal at the end of the frame.
func (s *Scene) Destroy(n *Node) {
	if !s.Alive(n) {
		return
	}
	for _, c := range n.children {
		s.Destroy(c)
	}
	s.pending[n.ID] = n
	s.world.MarkForDestruction(n.ID)
}

// SetMotion gives n a constant velocity in the headless simulation.
func (s *Scene) SetMotion(n *Node, velocity Vec2) {
	s.motion.Set(n.ID, &Motion{Velocity: velocity})
}

// MotionOf returns n's velocity component, if it has one.
func (s *Scene) MotionOf(n *Node) (*Motion, bool) {
	return s.motion.Get(n.ID)
}

// EachMoving visits nodes with a Motion component.
func (s *Scene) EachMoving(fn func(*Node, *Motion)) {
	ecs.Each2(s.nodes, s.motion, func(_ ecs.EntityID, n *Node, m *Motion) {
		fn(n, m)
	})
}

// Each visits every live node in creation order, modulo removals.
func (s *Scene) Each(fn func(*Node)) {
	s.nodes.Each(func(_ ecs.EntityID, n *Node) { fn(n) })
}

// Flush destroys queued nodes and emits EntityDestroyed for each. Called
// once per frame from the cleanup phase; returns the number destroyed.
func (s *Scene) Flush() int {
	return s.world.FlushDestroyQueue(func(id ecs.EntityID) {
		n, ok := s.pending[id]
		if !ok {
			return
		}
		delete(s.pending, id)
		if n.parent != nil {
			n.parent.removeChild(n)
		}
		s.dying[id] = n
		event.Emit(s.bus, event.EntityDestroyed{ID: id, Archetype: n.Archetype})
	})
}

func (s *Scene) onDestroyed(ev event.EntityDestroyed) {
	n, ok := s.dying[ev.ID]
	if !ok {
		return
	}
	delete(s.dying, ev.ID)
	subs := s.subs[ev.ID]
	delete(s.subs, ev.ID)
	for _, sub := range subs {
		if sub.event == EventDestroyed {
			sub.fn(n)
		}
	}
}
