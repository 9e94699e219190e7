package system

import (
	"time"

	"github.com/l1jgo/director/internal/config"
	coresys "github.com/l1jgo/director/internal/core/system"
	"github.com/l1jgo/director/internal/data"
	"github.com/l1jgo/director/internal/level"
	"github.com/l1jgo/director/internal/scene"
)

// SimSystem stands in for input and physics when the level runs headless.
// The player patrols the level, the camera follows, enemies walk toward the
// side the player was on when they appeared and are defeated on contact,
// clouds drift right and despawn past the boundary. Phase 3 (PostUpdate).
type SimSystem struct {
	sc        *scene.Scene
	lvl       *level.State
	table     *data.WaveTable
	orch      *Orchestrator
	cfg       config.SimConfig
	viewWidth float64
	timeScale float64

	facing   scene.Vec2
	defeated int
}

func NewSimSystem(sc *scene.Scene, lvl *level.State, table *data.WaveTable, orch *Orchestrator, cfg config.SimConfig, viewWidth, timeScale float64) *SimSystem {
	return &SimSystem{
		sc:        sc,
		lvl:       lvl,
		table:     table,
		orch:      orch,
		cfg:       cfg,
		viewWidth: viewWidth,
		timeScale: timeScale,
		facing:    scene.Right,
	}
}

func (s *SimSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// Defeated is the number of enemies the player has run into.
func (s *SimSystem) Defeated() int { return s.defeated }

func (s *SimSystem) Update(dt time.Duration) {
	player := s.orch.Player()
	if player == nil || s.lvl.Paused {
		return
	}
	delta := dt.Seconds() * s.timeScale
	bounds := s.lvl.Boundary

	s.walkPlayer(player, delta, bounds)
	s.sc.Camera().Follow(player.Position, s.viewWidth, bounds)

	s.sc.Each(func(n *scene.Node) {
		arch := s.table.Get(n.Archetype)
		if arch == nil || !fights(arch.Class) || !s.sc.Alive(n) {
			return
		}
		if _, moving := s.sc.MotionOf(n); !moving && arch.Class != data.ClassBoss {
			dir := scene.Right
			if n.Position.X > player.Position.X {
				dir = scene.Left
			}
			s.sc.SetMotion(n, dir.Scale(s.cfg.EnemySpeed))
		}
		if n.Position.DistanceXTo(player.Position) <= s.cfg.PlayerReach {
			s.sc.Destroy(n)
			s.defeated++
		}
	})

	limit := bounds.X + bounds.W + s.cfg.CloudMargin
	s.sc.EachMoving(func(n *scene.Node, m *scene.Motion) {
		n.Position = n.Position.Add(m.Velocity.Scale(delta))
		if n.Archetype == CloudArchetype && n.Position.X > limit {
			s.sc.Destroy(n)
		}
	})
}

// walkPlayer moves the player along the level, turning at either edge.
func (s *SimSystem) walkPlayer(player *scene.Node, delta float64, bounds scene.Rect2) {
	p := player.Position.Add(s.facing.Scale(s.cfg.PlayerSpeed * delta))
	switch {
	case p.X >= bounds.X+bounds.W:
		p.X = bounds.X + bounds.W
		s.facing = scene.Left
	case p.X <= bounds.X:
		p.X = bounds.X
		s.facing = scene.Right
	}
	player.Position = p
}

func fights(c data.Class) bool {
	switch c {
	case data.ClassWeak, data.ClassMid, data.ClassElite, data.ClassBoss:
		return true
	}
	return false
}
