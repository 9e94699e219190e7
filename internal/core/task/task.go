package task

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
)

// State is the lifecycle position of a Task.
type State int32

const (
	StateCreated   State = iota // built, routine not started
	StateSuspended              // parked at a yield point
	StateRunning                // inside a Resume step
	StateCompleted              // routine returned nil
	StateCancelled              // unwound by Cancel
	StateFaulted                // routine returned an error or panicked
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateSuspended:
		return "suspended"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Terminal reports whether the state can never change again.
func (s State) Terminal() bool { return s >= StateCompleted }

// ErrReentrantResume is returned when a routine resumes its own task.
var ErrReentrantResume = errors.New("task: resume called from inside its own step")

var errGoexit = errors.New("task: routine exited via runtime.Goexit")

// PanicError carries a value recovered from a panicking routine.
type PanicError struct {
	Task  string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %s panicked: %v", e.Task, e.Value)
}

// Routine is the body of a Task. It suspends through co and returns when
// its work is done. Cleanup belongs in defer statements: they run on both
// normal return and cancellation.
type Routine func(co *Co) error

type signal int

const (
	sigResume signal = iota
	sigCancel
)

type outcome int

const (
	outYield outcome = iota
	outDone
	outCancelled
	outFault
)

type report struct {
	kind outcome
	err  error
}

var nextID atomic.Uint64

// Task wraps one cooperative routine. The routine runs on its own goroutine
// but only between a Resume (or Cancel) call and the matching report, so at
// most one routine in a hierarchy executes at any instant. Task is not safe
// for use by more than one driving goroutine.
type Task struct {
	id      uint64
	name    string
	routine Routine
	state   State
	err     error
	co      *Co

	wake chan signal
	back chan report

	cancelPending bool
}

// New wraps r in a Task in StateCreated. Nothing runs until the first Resume.
func New(name string, r Routine) *Task {
	t := &Task{
		id:      nextID.Add(1),
		name:    name,
		routine: r,
		state:   StateCreated,
	}
	t.co = &Co{task: t}
	return t
}

func (t *Task) ID() uint64   { return t.id }
func (t *Task) Name() string { return t.name }
func (t *Task) State() State { return t.state }
func (t *Task) Done() bool   { return t.state.Terminal() }

// Err returns the fault of a Faulted task, or a panic raised by cleanup code
// of a Cancelled one. It is nil otherwise.
func (t *Task) Err() error { return t.err }

// Resume runs the routine from its last suspension point until it yields,
// returns or faults. delta is the frame's game time in seconds and is what
// Co.Wait accumulates. Resuming a terminal task is a no-op.
func (t *Task) Resume(delta float64) error {
	switch t.state {
	case StateRunning:
		return ErrReentrantResume
	case StateCompleted, StateCancelled, StateFaulted:
		return nil
	case StateCreated:
		t.wake = make(chan signal)
		t.back = make(chan report)
		go t.run()
	}
	t.co.delta = delta
	t.state = StateRunning
	return t.step(sigResume)
}

// Cancel delivers the cancellation signal at the routine's suspension point
// and waits for its deferred cleanup to finish. A task that never started is
// cancelled without running. Once Cancel returns the task is Cancelled,
// unless it was Running: cancelling from inside the routine's own step only
// takes effect at its next suspension point, after Cancel has returned.
func (t *Task) Cancel() {
	switch t.state {
	case StateCreated:
		t.state = StateCancelled
	case StateSuspended:
		t.state = StateRunning
		t.step(sigCancel)
	case StateRunning:
		t.cancelPending = true
	}
}

func (t *Task) step(sig signal) error {
	t.wake <- sig
	r := <-t.back
	switch r.kind {
	case outYield:
		t.state = StateSuspended
	case outDone:
		t.state = StateCompleted
	case outCancelled:
		t.state = StateCancelled
		t.err = r.err
	case outFault:
		t.state = StateFaulted
		t.err = r.err
		return r.err
	}
	return nil
}

func (t *Task) run() {
	finished := false
	defer func() {
		if finished {
			return
		}
		r := recover()
		switch {
		case t.co.unwinding:
			var err error
			if r != nil {
				err = &PanicError{Task: t.name, Value: r, Stack: debug.Stack()}
			}
			t.back <- report{kind: outCancelled, err: err}
		case r != nil:
			t.back <- report{kind: outFault, err: &PanicError{Task: t.name, Value: r, Stack: debug.Stack()}}
		default:
			t.back <- report{kind: outFault, err: errGoexit}
		}
	}()

	<-t.wake
	err := t.routine(t.co)
	finished = true
	if err != nil {
		t.back <- report{kind: outFault, err: fmt.Errorf("task %s: %w", t.name, err)}
		return
	}
	t.back <- report{kind: outDone}
}
