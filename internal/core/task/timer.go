package task

// Timer counts game time toward a fixed duration. It never suspends; a
// routine ticks it with its own delta.
type Timer struct {
	duration float64
	elapsed  float64
}

func NewTimer(duration float64) *Timer {
	if duration < 0 {
		duration = 0
	}
	return &Timer{duration: duration}
}

// Tick advances elapsed by delta, clamped at the duration. Negative deltas
// are ignored so elapsed only grows.
func (t *Timer) Tick(delta float64) {
	if delta <= 0 {
		return
	}
	t.elapsed += delta
	if t.elapsed > t.duration {
		t.elapsed = t.duration
	}
}

func (t *Timer) Duration() float64 { return t.duration }
func (t *Timer) Elapsed() float64  { return t.elapsed }

// TimeRemaining is max(0, duration-elapsed).
func (t *Timer) TimeRemaining() float64 {
	if r := t.duration - t.elapsed; r > 0 {
		return r
	}
	return 0
}

func (t *Timer) Reset() { t.elapsed = 0 }
