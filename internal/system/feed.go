package system

import (
	"encoding/json"
	"time"

	coresys "github.com/l1jgo/director/internal/core/system"
	gonet "github.com/l1jgo/director/internal/net"
	"go.uber.org/zap"
)

// Broadcaster is the spectator side of the feed (*net.FeedServer).
type Broadcaster interface {
	Broadcast(data []byte)
}

// FeedSystem sends an encounter snapshot to spectators every few frames.
// Phase 4 (Output).
type FeedSystem struct {
	orch  *Orchestrator
	out   Broadcaster
	log   *zap.Logger
	every int
	frame uint64
	sent  int
}

func NewFeedSystem(orch *Orchestrator, out Broadcaster, everyFrames int, log *zap.Logger) *FeedSystem {
	if everyFrames < 1 {
		everyFrames = 1
	}
	return &FeedSystem{orch: orch, out: out, every: everyFrames, log: log}
}

func (s *FeedSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

// Sent is the number of snapshots handed to the broadcaster.
func (s *FeedSystem) Sent() int { return s.sent }

func (s *FeedSystem) Update(_ time.Duration) {
	s.frame++
	if s.frame%uint64(s.every) != 0 {
		return
	}
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		s.log.Error("feed snapshot marshal failed", zap.Error(err))
		return
	}
	s.out.Broadcast(data)
	s.sent++
}

// Snapshot captures the encounter as of the current frame.
func (s *FeedSystem) Snapshot() gonet.Snapshot {
	snap := gonet.Snapshot{
		Frame:    s.frame,
		GameTime: s.orch.Elapsed(),
		Complete: s.orch.Complete(),
	}
	if p := s.orch.Player(); p != nil {
		snap.PlayerX = p.Position.X
	}
	if d := s.orch.Director(); d != nil {
		snap.Phase = d.Phase().String()
		snap.Section = d.Section()
		snap.Live = d.Live()
		snap.Cooldown = d.CooldownRemaining()
	}
	if c := s.orch.Clouds(); c != nil {
		snap.Clouds = c.Len()
	}
	return snap
}
