package system

import (
	"testing"
	"time"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r *recorder) Phase() Phase { return r.phase }
func (r *recorder) Update(time.Duration) {
	*r.log = append(*r.log, r.name)
}

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recorder{"cleanup", PhaseCleanup, &log})
	r.Register(&recorder{"update-a", PhaseUpdate, &log})
	r.Register(&recorder{"pre", PhasePreUpdate, &log})
	r.Register(&recorder{"update-b", PhaseUpdate, &log})

	r.Tick(16 * time.Millisecond)

	want := []string{"pre", "update-a", "update-b", "cleanup"}
	if len(log) != len(want) {
		t.Fatalf("order = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("order = %v, want %v", log, want)
		}
	}
	if r.Frame() != 1 {
		t.Fatalf("frame = %d, want 1", r.Frame())
	}

	log = log[:0]
	r.TickPhase(PhaseUpdate, 0)
	if len(log) != 2 || r.Frame() != 1 {
		t.Fatalf("TickPhase ran %v at frame %d", log, r.Frame())
	}
}
