package system

import (
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/director/internal/core/event"
	coresys "github.com/l1jgo/director/internal/core/system"
	"github.com/l1jgo/director/internal/core/task"
	"github.com/l1jgo/director/internal/data"
	"github.com/l1jgo/director/internal/director"
	"github.com/l1jgo/director/internal/level"
	"github.com/l1jgo/director/internal/metrics"
	"github.com/l1jgo/director/internal/scene"
)

// ErrNoPlayer faults the root task of a level without a "Player" node.
var ErrNoPlayer = errors.New("level root has no Player child")

const (
	gateTexture = "assets/images/environment/bridge_gate.png"
	gateZ       = 2
)

var (
	gateClosed = scene.Rect2{X: 0, Y: 0, W: 10, H: 52}
	gateOpened = scene.Rect2{X: 10, Y: 0, W: 10, H: 52}
)

// OrchestratorDeps wires one level. Counts, Journal and Metrics are optional.
type OrchestratorDeps struct {
	Scene     *scene.Scene
	Level     *level.State
	Table     *data.WaveTable
	Rand      *rand.Rand
	Log       *zap.Logger
	Director  director.Options
	Clouds    CloudOptions
	TimeScale float64

	Counts  director.CountPolicy
	Journal director.Recorder
	Metrics *metrics.Exporter
}

// Orchestrator owns the level's root task. Each frame it resumes the root,
// which resumes the wave director and the cloud keeper in that order.
// Phase 2 (Update).
type Orchestrator struct {
	deps OrchestratorDeps
	log  *zap.Logger
	root *task.Task

	player *scene.Node
	gate   *scene.Node
	dir    *director.Director
	clouds *Clouds

	elapsed  float64
	complete bool
}

func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	o := &Orchestrator{deps: deps, log: deps.Log.With(zap.String("task", "game_master"))}
	o.root = task.New("game_master", o.run)
	event.Subscribe(deps.Scene.Bus(), o.onEncounterPhase)
	return o
}

func (o *Orchestrator) Phase() coresys.Phase { return coresys.PhaseUpdate }

// Update resumes the root task with dt scaled by the level's time scale.
func (o *Orchestrator) Update(dt time.Duration) {
	delta := dt.Seconds() * o.deps.TimeScale
	o.elapsed += delta
	start := time.Now()
	if err := o.root.Resume(delta); err != nil {
		o.log.Error("root task faulted", zap.Error(err))
		o.deps.Metrics.TaskFault(o.root.Name())
	}
	o.deps.Metrics.ObserveRootStep(time.Since(start))
}

// Shutdown cancels the root task and, through it, every child.
func (o *Orchestrator) Shutdown() {
	o.root.Cancel()
}

func (o *Orchestrator) Root() *task.Task             { return o.root }
func (o *Orchestrator) Player() *scene.Node          { return o.player }
func (o *Orchestrator) Gate() *scene.Node            { return o.gate }
func (o *Orchestrator) Director() *director.Director { return o.dir }
func (o *Orchestrator) Clouds() *Clouds              { return o.clouds }
func (o *Orchestrator) Elapsed() float64             { return o.elapsed }

// Complete reports whether the encounter reached its idle phase.
func (o *Orchestrator) Complete() bool { return o.complete }

func (o *Orchestrator) run(co *task.Co) error {
	sc := o.deps.Scene
	st := o.deps.Level

	o.player = sc.FindChild(sc.Root(), "Player")
	if o.player == nil {
		return ErrNoPlayer
	}
	st.FloorY = o.player.Position.Y

	o.dir = director.New(director.Deps{
		Host:    sc,
		Root:    sc.Root(),
		Player:  o.player,
		Camera:  sc.Camera(),
		Level:   st,
		Table:   o.deps.Table,
		Rand:    o.deps.Rand,
		Log:     o.deps.Log.With(zap.String("task", "enemy_waves")),
		Counts:  o.deps.Counts,
		Journal: o.deps.Journal,
		Metrics: o.deps.Metrics,
		Bus:     sc.Bus(),
		Clock:   o.Elapsed,
	}, o.deps.Director)
	o.clouds = NewClouds(sc, o.deps.Rand, o.deps.Clouds, o.deps.Log.With(zap.String("task", "clouds")))

	children := task.NewGroup(o.onChildFault)
	children.Add(task.New("enemy_waves", o.dir.Run))
	children.Add(task.New("clouds", o.clouds.Run))
	defer children.CancelAll()

	o.gate = o.spawnGate()

	if err := co.Await(task.New("fade_in", level.FadeTransition(st, false))); err != nil {
		o.log.Warn("fade-in failed", zap.Error(err))
	}
	o.log.Info("level started",
		zap.Float64("floor_y", st.FloorY),
		zap.Float64("boundary_w", st.Boundary.W),
	)

	for {
		if !st.Paused {
			children.ResumeAll(co.Delta())
		}
		co.Next()
	}
}

func (o *Orchestrator) spawnGate() *scene.Node {
	sc := o.deps.Scene
	st := o.deps.Level
	gate := sc.NewNode("BridgeGate")
	gate.Position = scene.Vec2{X: st.Boundary.W - 10, Y: st.FloorY - 31}
	gate.ZIndex = gateZ
	gate.Texture = gateTexture
	gate.DrawRegion = gateClosed
	sc.AddChild(sc.Root(), gate)
	return gate
}

func (o *Orchestrator) onChildFault(t *task.Task, err error) {
	o.log.Error("child task faulted", zap.String("child", t.Name()), zap.Error(err))
	o.deps.Metrics.TaskFault(t.Name())
}

func (o *Orchestrator) onEncounterPhase(ev event.EncounterPhaseChanged) {
	if ev.To != director.PhaseIdle.String() || o.complete {
		return
	}
	o.complete = true
	if o.gate != nil {
		o.gate.DrawRegion = gateOpened
	}
	o.log.Info("encounter complete, bridge gate opened")
}

// GateOpen reports whether the bridge gate shows its opened frame.
func (o *Orchestrator) GateOpen() bool {
	return o.gate != nil && o.gate.DrawRegion == gateOpened
}
