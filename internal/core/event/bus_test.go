package event

import "testing"

func TestBusDeliversNextFrame(t *testing.T) {
	b := NewBus()
	var got []EntityDestroyed
	Subscribe(b, func(ev EntityDestroyed) { got = append(got, ev) })

	Emit(b, EntityDestroyed{ID: 1, Archetype: "rabbit"})
	Emit(b, EntityDestroyed{ID: 2, Archetype: "crow"})
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("delivered %d events in the emitting frame", len(got))
	}

	b.SwapBuffers()
	if b.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", b.Pending())
	}
	b.DispatchAll()
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("got %+v", got)
	}

	b.DispatchAll()
	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 2 {
		t.Fatalf("events redelivered: %+v", got)
	}
}
