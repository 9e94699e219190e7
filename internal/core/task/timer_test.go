package task

import "testing"

func TestTimerTick(t *testing.T) {
	tests := []struct {
		name          string
		duration      float64
		ticks         []float64
		wantElapsed   float64
		wantRemaining float64
	}{
		{"empty", 2, nil, 0, 2},
		{"partial", 2, []float64{0.25, 0.5}, 0.75, 1.25},
		{"exact", 2, []float64{1, 1}, 2, 0},
		{"overflow clamps", 2, []float64{1.5, 1.5}, 2, 0},
		{"negative ignored", 2, []float64{0.5, -1}, 0.5, 1.5},
		{"zero duration", 0, []float64{1}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := NewTimer(tt.duration)
			for _, d := range tt.ticks {
				tm.Tick(d)
			}
			if tm.Elapsed() != tt.wantElapsed {
				t.Fatalf("elapsed = %v, want %v", tm.Elapsed(), tt.wantElapsed)
			}
			if tm.TimeRemaining() != tt.wantRemaining {
				t.Fatalf("remaining = %v, want %v", tm.TimeRemaining(), tt.wantRemaining)
			}
		})
	}
}

func TestTimerReset(t *testing.T) {
	tm := NewTimer(35)
	tm.Tick(40)
	tm.Reset()
	if tm.Elapsed() != 0 || tm.TimeRemaining() != 35 || tm.Duration() != 35 {
		t.Fatalf("after reset elapsed = %v remaining = %v duration = %v", tm.Elapsed(), tm.TimeRemaining(), tm.Duration())
	}
}
