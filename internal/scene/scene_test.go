package scene

import (
	"testing"

	"github.com/l1jgo/director/internal/core/event"
)

// endFrame mimics the cleanup phase of one frame and the pre-update phase
// of the next.
func endFrame(s *Scene) {
	s.Flush()
	s.Bus().SwapBuffers()
	s.Bus().DispatchAll()
}

func TestDestroyedNotifiesNextFrame(t *testing.T) {
	s := New(event.NewBus())
	owner := s.Root()
	enemy := s.CreateInstance("rabbit")
	s.AddChild(owner, enemy)

	var got []*Node
	s.Subscribe(enemy, EventDestroyed, owner, func(n *Node) { got = append(got, n) })

	s.Destroy(enemy)
	if !s.world.Alive(enemy.ID) {
		t.Fatal("entity removed before end of frame")
	}
	if s.Alive(enemy) {
		t.Fatal("queued entity still reported alive")
	}
	if len(got) != 0 {
		t.Fatal("notified before flush")
	}

	endFrame(s)
	if len(got) != 1 || got[0] != enemy {
		t.Fatalf("notifications = %v", got)
	}
	if len(owner.Children()) != 0 {
		t.Fatalf("root still holds %d children", len(owner.Children()))
	}

	endFrame(s)
	if len(got) != 1 {
		t.Fatal("notified twice")
	}
}

func TestUnsubscribeByOwner(t *testing.T) {
	s := New(event.NewBus())
	a := s.NewNode("a")
	b := s.NewNode("b")
	n := s.CreateInstance("crow")

	calls := map[string]int{}
	s.Subscribe(n, EventDestroyed, a, func(*Node) { calls["a"]++ })
	s.Subscribe(n, EventDestroyed, b, func(*Node) { calls["b"]++ })
	s.Unsubscribe(n, a)

	s.Destroy(n)
	endFrame(s)
	if calls["a"] != 0 || calls["b"] != 1 {
		t.Fatalf("calls = %v", calls)
	}
}

func TestDestroyCascadesToChildren(t *testing.T) {
	s := New(event.NewBus())
	parent := s.NewNode("gate")
	child := s.NewNode("latch")
	s.AddChild(s.Root(), parent)
	s.AddChild(parent, child)

	before := s.Len()
	s.Destroy(parent)
	if n := s.Flush(); n != 2 {
		t.Fatalf("flushed %d, want 2", n)
	}
	if s.Len() != before-2 {
		t.Fatalf("len = %d, want %d", s.Len(), before-2)
	}
}

func TestFindChild(t *testing.T) {
	s := New(event.NewBus())
	p := s.NewNode("Player")
	s.AddChild(s.Root(), s.NewNode("Gate"))
	s.AddChild(s.Root(), p)
	if got := s.FindChild(s.Root(), "Player"); got != p {
		t.Fatalf("FindChild = %v, want player", got)
	}
	if s.FindChild(s.Root(), "Missing") != nil {
		t.Fatal("found missing child")
	}
}

func TestCameraFollowClamps(t *testing.T) {
	bounds := Rect2{W: 896, H: 144}
	c := &Camera{}
	tests := []struct {
		x, want float64
	}{
		{0, 0},
		{400, 320},
		{890, 736},
	}
	for _, tt := range tests {
		c.Follow(Vec2{X: tt.x}, 160, bounds)
		if c.Position().X != tt.want {
			t.Fatalf("follow %v: camera x = %v, want %v", tt.x, c.Position().X, tt.want)
		}
	}
}
