package task

// Group keeps a routine's child tasks in registration order. It does not
// schedule anything by itself: the owning routine calls ResumeAll from its
// step and defers CancelAll.
type Group struct {
	tasks   []*Task
	onFault func(t *Task, err error)
}

// NewGroup creates an empty group. onFault, if non-nil, is called once for
// each child whose step faulted; the other children keep running.
func NewGroup(onFault func(t *Task, err error)) *Group {
	return &Group{onFault: onFault}
}

// Add registers t and returns it.
func (g *Group) Add(t *Task) *Task {
	g.tasks = append(g.tasks, t)
	return t
}

func (g *Group) Len() int { return len(g.tasks) }

// Tasks returns the children in registration order.
func (g *Group) Tasks() []*Task { return g.tasks }

// ResumeAll resumes every child in registration order with delta.
func (g *Group) ResumeAll(delta float64) {
	for _, t := range g.tasks {
		if err := t.Resume(delta); err != nil && g.onFault != nil {
			g.onFault(t, err)
		}
	}
}

// CancelAll cancels every child in registration order. Each Cancel returns
// only after that child's cleanup has run.
func (g *Group) CancelAll() {
	for _, t := range g.tasks {
		t.Cancel()
	}
}
