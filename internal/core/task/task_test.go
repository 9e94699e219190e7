package task

import (
	"errors"
	"testing"
)

func loopForever(co *Co) error {
	for {
		co.Next()
	}
}

func TestResumeStepsOncePerYield(t *testing.T) {
	var steps []int
	tk := New("steps", func(co *Co) error {
		steps = append(steps, 1)
		co.Next()
		steps = append(steps, 2)
		co.Next()
		steps = append(steps, 3)
		return nil
	})

	if tk.State() != StateCreated {
		t.Fatalf("state = %v, want created", tk.State())
	}
	for i, want := range []State{StateSuspended, StateSuspended, StateCompleted} {
		if err := tk.Resume(0.016); err != nil {
			t.Fatalf("resume %d: %v", i, err)
		}
		if tk.State() != want {
			t.Fatalf("after resume %d state = %v, want %v", i, tk.State(), want)
		}
		if len(steps) != i+1 {
			t.Fatalf("after resume %d ran %d steps, want %d", i, len(steps), i+1)
		}
	}
}

func TestResumeTerminalIsNoOp(t *testing.T) {
	runs := 0
	done := New("done", func(co *Co) error {
		runs++
		return nil
	})
	if err := done.Resume(0); err != nil {
		t.Fatalf("resume: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := done.Resume(0); err != nil {
			t.Fatalf("resume completed: %v", err)
		}
	}
	if runs != 1 || done.State() != StateCompleted {
		t.Fatalf("runs = %d state = %v, want 1 completed", runs, done.State())
	}

	entered := 0
	cancelled := New("cancelled", func(co *Co) error {
		entered++
		return loopForever(co)
	})
	cancelled.Resume(0)
	cancelled.Cancel()
	cancelled.Resume(0)
	cancelled.Resume(0)
	if entered != 1 || cancelled.State() != StateCancelled {
		t.Fatalf("entered = %d state = %v, want 1 cancelled", entered, cancelled.State())
	}
}

func TestCancelRunsCleanupAndCancelsChildren(t *testing.T) {
	var children []*Task
	cleaned := false
	parent := New("parent", func(co *Co) error {
		group := NewGroup(nil)
		defer func() {
			group.CancelAll()
			cleaned = true
		}()
		for i := 0; i < 3; i++ {
			children = append(children, group.Add(New("child", loopForever)))
		}
		for {
			group.ResumeAll(co.Delta())
			co.Next()
		}
	})

	parent.Resume(0.016)
	parent.Resume(0.016)
	parent.Cancel()

	if parent.State() != StateCancelled {
		t.Fatalf("parent state = %v, want cancelled", parent.State())
	}
	if !cleaned {
		t.Fatal("cleanup did not run")
	}
	for i, c := range children {
		if c.State() != StateCancelled {
			t.Fatalf("child %d state = %v, want cancelled", i, c.State())
		}
	}
	if parent.Err() != nil {
		t.Fatalf("cancelled task reported error %v", parent.Err())
	}
}

func TestCancelCreatedNeverRuns(t *testing.T) {
	ran := false
	tk := New("never", func(co *Co) error {
		ran = true
		return nil
	})
	tk.Cancel()
	tk.Resume(0)
	if ran {
		t.Fatal("routine ran after cancel")
	}
	if tk.State() != StateCancelled {
		t.Fatalf("state = %v, want cancelled", tk.State())
	}
}

func TestCancelTerminalIsNoOp(t *testing.T) {
	tk := New("done", func(co *Co) error { return nil })
	tk.Resume(0)
	tk.Cancel()
	if tk.State() != StateCompleted {
		t.Fatalf("state = %v, want completed", tk.State())
	}
}

func TestCleanupCannotSuspend(t *testing.T) {
	finished := false
	cancelling := false
	tk := New("cleanup", func(co *Co) error {
		defer func() {
			cancelling = co.Cancelling()
			co.Next()
			co.Wait(10)
			finished = true
		}()
		return loopForever(co)
	})
	tk.Resume(0)
	tk.Cancel()
	if !cancelling {
		t.Fatal("Cancelling() = false inside cleanup")
	}
	if !finished {
		t.Fatal("cleanup was suspended")
	}
	if tk.State() != StateCancelled {
		t.Fatalf("state = %v, want cancelled", tk.State())
	}
}

func TestSelfCancelTakesEffectAtNextYield(t *testing.T) {
	var tk *Task
	after := false
	tk = New("self", func(co *Co) error {
		tk.Cancel()
		co.Next()
		after = true
		return nil
	})
	if err := tk.Resume(0); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if after {
		t.Fatal("routine continued past cancellation")
	}
	if tk.State() != StateCancelled {
		t.Fatalf("state = %v, want cancelled", tk.State())
	}
}

func TestRoutineErrorFaults(t *testing.T) {
	boom := errors.New("boom")
	tk := New("err", func(co *Co) error {
		co.Next()
		return boom
	})
	if err := tk.Resume(0); err != nil {
		t.Fatalf("first resume: %v", err)
	}
	err := tk.Resume(0)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if tk.State() != StateFaulted || !errors.Is(tk.Err(), boom) {
		t.Fatalf("state = %v err = %v", tk.State(), tk.Err())
	}
	if err := tk.Resume(0); err != nil {
		t.Fatalf("resume faulted: %v", err)
	}
}

func TestPanicBecomesPanicError(t *testing.T) {
	tk := New("panic", func(co *Co) error {
		panic("kaboom")
	})
	err := tk.Resume(0)
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PanicError", err)
	}
	if pe.Value != "kaboom" || pe.Task != "panic" || len(pe.Stack) == 0 {
		t.Fatalf("panic error = %+v", pe)
	}
	if tk.State() != StateFaulted {
		t.Fatalf("state = %v, want faulted", tk.State())
	}
}

func TestReentrantResume(t *testing.T) {
	var tk *Task
	tk = New("reentrant", func(co *Co) error {
		return tk.Resume(0)
	})
	err := tk.Resume(0)
	if !errors.Is(err, ErrReentrantResume) {
		t.Fatalf("err = %v, want ErrReentrantResume", err)
	}
}

func TestWaitAccumulatesDelta(t *testing.T) {
	tk := New("wait", func(co *Co) error {
		co.Wait(1.0)
		return nil
	})
	for i := 0; i < 4; i++ {
		tk.Resume(0.25)
		if tk.Done() {
			t.Fatalf("done after %d resumes", i+1)
		}
	}
	tk.Resume(0.25)
	if tk.State() != StateCompleted {
		t.Fatalf("state = %v, want completed after 5 resumes", tk.State())
	}
}

func TestWaitIgnoresFirstStepDelta(t *testing.T) {
	// The delta that started the wait belongs to the step before it.
	tk := New("wait", func(co *Co) error {
		co.Wait(0.5)
		return nil
	})
	tk.Resume(10)
	if tk.Done() {
		t.Fatal("wait finished in the step that started it")
	}
	tk.Resume(0.5)
	if !tk.Done() {
		t.Fatal("wait did not finish")
	}
}

func TestWaitZeroDoesNotYield(t *testing.T) {
	tk := New("zero", func(co *Co) error {
		co.Wait(0)
		return nil
	})
	tk.Resume(0)
	if tk.State() != StateCompleted {
		t.Fatalf("state = %v, want completed", tk.State())
	}
}

func TestAwaitDrivesChild(t *testing.T) {
	childSteps := 0
	child := New("child", func(co *Co) error {
		for i := 0; i < 3; i++ {
			childSteps++
			co.Next()
		}
		return nil
	})
	parentSteps := 0
	parent := New("parent", func(co *Co) error {
		return co.Await(child)
	})
	for !parent.Done() {
		parentSteps++
		if err := parent.Resume(0.016); err != nil {
			t.Fatalf("resume: %v", err)
		}
		if parentSteps > 10 {
			t.Fatal("parent never finished")
		}
	}
	if childSteps != 3 || parentSteps != 4 {
		t.Fatalf("child steps = %d parent steps = %d, want 3 and 4", childSteps, parentSteps)
	}
	if child.State() != StateCompleted {
		t.Fatalf("child state = %v", child.State())
	}
}

func TestAwaitCancelCancelsChild(t *testing.T) {
	child := New("child", loopForever)
	parent := New("parent", func(co *Co) error {
		return co.Await(child)
	})
	parent.Resume(0)
	parent.Cancel()
	if child.State() != StateCancelled {
		t.Fatalf("child state = %v, want cancelled", child.State())
	}
}

func TestAwaitReturnsChildFault(t *testing.T) {
	boom := errors.New("boom")
	child := New("child", func(co *Co) error { return boom })
	parent := New("parent", func(co *Co) error {
		if err := co.Await(child); err != nil {
			return err
		}
		return nil
	})
	if err := parent.Resume(0); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		id := New("id", loopForever).ID()
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}
