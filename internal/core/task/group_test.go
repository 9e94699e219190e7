package task

import "testing"

func TestGroupIsolatesFaults(t *testing.T) {
	var order []string
	var faults []string

	g := NewGroup(func(tk *Task, err error) {
		faults = append(faults, tk.Name())
	})
	g.Add(New("a", func(co *Co) error {
		for {
			order = append(order, "a")
			co.Next()
		}
	}))
	g.Add(New("bad", func(co *Co) error {
		order = append(order, "bad")
		panic("broken")
	}))
	g.Add(New("c", func(co *Co) error {
		for {
			order = append(order, "c")
			co.Next()
		}
	}))

	g.ResumeAll(0.016)
	g.ResumeAll(0.016)

	want := []string{"a", "bad", "c", "a", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if len(faults) != 1 || faults[0] != "bad" {
		t.Fatalf("faults = %v, want [bad]", faults)
	}

	g.CancelAll()
	for _, tk := range g.Tasks() {
		if !tk.Done() {
			t.Fatalf("%s state = %v after CancelAll", tk.Name(), tk.State())
		}
	}
	if g.Tasks()[1].State() != StateFaulted {
		t.Fatalf("faulted child became %v", g.Tasks()[1].State())
	}
}
