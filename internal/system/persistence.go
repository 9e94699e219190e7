package system

import (
	"context"
	"time"

	coresys "github.com/l1jgo/director/internal/core/system"
	"github.com/l1jgo/director/internal/persist"
	"go.uber.org/zap"
)

// JournalSystem periodically writes the wave journal to the database.
// Phase 5 (Persist).
type JournalSystem struct {
	journal   *persist.Journal
	log       *zap.Logger
	tickCount int
	interval  int // flush every N ticks
	timeout   time.Duration
}

func NewJournalSystem(j *persist.Journal, log *zap.Logger, intervalTicks int, timeout time.Duration) *JournalSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &JournalSystem{
		journal:  j,
		log:      log,
		interval: intervalTicks,
		timeout:  timeout,
	}
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Flush writes pending records now. Called at shutdown so the tail of the
// encounter is not lost.
func (s *JournalSystem) Flush() {
	if s.journal.Len() == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.journal.Flush(ctx); err != nil {
		s.log.Error("journal flush failed, keeping batch", zap.Int("pending", s.journal.Len()), zap.Error(err))
	}
}
