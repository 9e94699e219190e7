package task

import "runtime"

// Co is the handle a routine suspends through. It is valid only inside the
// routine it was passed to.
type Co struct {
	task      *Task
	delta     float64
	unwinding bool
}

// Task returns the task driving this routine.
func (co *Co) Task() *Task { return co.task }

// Delta is the game time passed to the Resume call currently running.
func (co *Co) Delta() float64 { return co.delta }

// Cancelling reports whether the routine is running its cleanup after Cancel.
func (co *Co) Cancelling() bool { return co.unwinding }

// Next yields until the next Resume. During cleanup it returns immediately:
// a cancelled routine never suspends again.
func (co *Co) Next() {
	if co.unwinding {
		return
	}
	t := co.task
	if t.cancelPending {
		co.unwind()
	}
	t.back <- report{kind: outYield}
	if <-t.wake == sigCancel {
		co.unwind()
	}
}

// Wait yields until the deltas of the following resumes add up to seconds.
// It measures game time, so a paused or dilated clock stretches the wait.
func (co *Co) Wait(seconds float64) {
	for elapsed := 0.0; elapsed < seconds && !co.unwinding; {
		co.Next()
		elapsed += co.delta
	}
}

// Await drives child to a terminal state, one child step per parent step,
// and returns the child's fault if it had one. The first child step runs in
// the caller's current step. Cancelling the caller cancels child.
func (co *Co) Await(child *Task) error {
	defer func() {
		if co.unwinding {
			child.Cancel()
		}
	}()
	for !co.unwinding {
		if err := child.Resume(co.delta); err != nil {
			return err
		}
		if child.Done() {
			return nil
		}
		co.Next()
	}
	return nil
}

func (co *Co) unwind() {
	co.unwinding = true
	runtime.Goexit()
}
