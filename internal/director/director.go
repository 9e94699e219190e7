// Package director runs the enemy wave encounter of a level as a task
// routine: recruit waves while the player crosses the level's sections,
// introduce the boss, wait for the field to clear, then spawn the terminal
// entity and idle.
package director

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/l1jgo/director/internal/core/ecs"
	"github.com/l1jgo/director/internal/core/event"
	"github.com/l1jgo/director/internal/core/task"
	"github.com/l1jgo/director/internal/data"
	"github.com/l1jgo/director/internal/level"
	"github.com/l1jgo/director/internal/persist"
	"github.com/l1jgo/director/internal/scene"
)

// Phase is the director's position in the encounter.
type Phase int

const (
	PhaseRecruitingWaves Phase = iota
	PhaseBossIntroduced
	PhaseAwaitingBossClear
	PhaseSpawningFinalEncounter
	PhaseIdle
)

func (p Phase) String() string {
	switch p {
	case PhaseRecruitingWaves:
		return "recruiting_waves"
	case PhaseBossIntroduced:
		return "boss_introduced"
	case PhaseAwaitingBossClear:
		return "awaiting_boss_clear"
	case PhaseSpawningFinalEncounter:
		return "spawning_final_encounter"
	case PhaseIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Host is the part of the scene the director spawns through.
type Host interface {
	CreateInstance(archetype string) *scene.Node
	AddChild(parent, child *scene.Node)
	Subscribe(n *scene.Node, event string, owner *scene.Node, fn func(*scene.Node))
	Unsubscribe(n *scene.Node, owner *scene.Node)
}

// Camera reports the viewport position spawns are placed against.
type Camera interface {
	Position() scene.Vec2
}

// CountPolicy overrides wave sizing. ok=false keeps the built-in rule.
type CountPolicy interface {
	WaveSize(class data.Class, section, total int) (n int, ok bool)
	PreSpawnDelay() (seconds float64, ok bool)
}

// Recorder receives one record per spawned wave.
type Recorder interface {
	RecordWave(r persist.WaveRecord)
}

// Metrics is the subset of metrics.Exporter the director updates.
type Metrics interface {
	WaveSpawned(archetype string, units int)
	MidCapSkipped()
	SetLiveEnemies(n int)
	SetSection(n int)
}

// Deps are the collaborators a Director needs. Counts, Journal, Metrics,
// Bus and Clock are optional.
type Deps struct {
	Host   Host
	Root   *scene.Node // spawned units are its children; owns their subscriptions
	Player *scene.Node
	Camera Camera
	Level  *level.State
	Table  *data.WaveTable
	Rand   *rand.Rand
	Log    *zap.Logger

	Counts  CountPolicy
	Journal Recorder
	Metrics Metrics
	Bus     *event.Bus
	Clock   func() float64 // game seconds since level start, for journal records
}

type Options struct {
	LevelID      string
	Sections     int
	WaveCooldown float64
	PreSpawnMin  float64
	PreSpawnMax  float64
	HalfWidth    float64
	CameraOffset float64
	BossInset    float64
	TerminalZ    int
}

// DefaultOptions mirrors the shipped config defaults.
func DefaultOptions() Options {
	return Options{
		Sections:     5,
		WaveCooldown: 35,
		PreSpawnMin:  0.5,
		PreSpawnMax:  2.5,
		HalfWidth:    96,
		CameraOffset: 80,
		BossInset:    32,
		TerminalZ:    10,
	}
}

type liveUnit struct {
	node  *scene.Node
	class data.Class
}

// Director tracks the enemies it spawned and drives the encounter phases.
// All methods run on the game loop.
type Director struct {
	deps Deps
	opts Options
	log  *zap.Logger

	cooldown        *task.Timer
	section         int
	nonBossFinished bool
	phase           Phase

	live    map[ecs.EntityID]liveUnit
	byClass map[data.Class][]*scene.Node

	boss     *scene.Node
	terminal *scene.Node
}

func New(deps Deps, opts Options) *Director {
	if opts.Sections < 1 {
		opts.Sections = 1
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Director{
		deps:     deps,
		opts:     opts,
		log:      deps.Log,
		cooldown: task.NewTimer(opts.WaveCooldown),
		section:  1,
		live:     make(map[ecs.EntityID]liveUnit),
		byClass:  make(map[data.Class][]*scene.Node),
	}
}

func (d *Director) Phase() Phase                { return d.phase }
func (d *Director) Section() int                { return d.section }
func (d *Director) Live() int                   { return len(d.live) }
func (d *Director) LiveOf(class data.Class) int { return len(d.byClass[class]) }
func (d *Director) CooldownRemaining() float64  { return d.cooldown.TimeRemaining() }
func (d *Director) Boss() *scene.Node           { return d.boss }
func (d *Director) Terminal() *scene.Node       { return d.terminal }

// Run is the director's task routine. Cancelling the task releases the
// live set and the destroyed subscriptions; spawned entities stay.
func (d *Director) Run(co *task.Co) error {
	defer d.release()

	for !d.nonBossFinished {
		d.cooldown.Tick(co.Delta())
		d.updateSection()
		if d.section == d.opts.Sections {
			d.nonBossFinished = true
		}
		if len(d.live) == 0 || d.cooldown.TimeRemaining() <= 0 || d.nonBossFinished {
			d.cooldown.Reset()
			co.Wait(d.preSpawnDelay())
			base := scene.Vec2{
				X: d.deps.Camera.Position().X + d.opts.CameraOffset,
				Y: d.deps.Level.FloorY,
			}
			d.SpawnWave(base, d.section, d.opts.Sections)
		}
		co.Next()
	}

	d.setPhase(PhaseBossIntroduced)
	d.spawnBoss()

	d.setPhase(PhaseAwaitingBossClear)
	for len(d.live) > 0 {
		co.Next()
	}

	d.setPhase(PhaseSpawningFinalEncounter)
	d.spawnTerminal()

	d.setPhase(PhaseIdle)
	for {
		co.Next()
	}
}

func (d *Director) updateSection() {
	w := d.deps.Level.Boundary.W
	x := d.deps.Player.Position.X
	s, ok := sectionOf(x, w, w/float64(d.opts.Sections))
	if !ok {
		d.log.Warn("no section for player position, using section 1", zap.Float64("x", x))
		s = 1
	}
	if s != d.section {
		d.log.Info("section changed", zap.Int("from", d.section), zap.Int("to", s))
	}
	d.section = s
	if d.deps.Metrics != nil {
		d.deps.Metrics.SetSection(s)
	}
}

// SectionOf maps x to a 1-based section of width sectionSize. Positions at
// or past horizontalMax are in the last section; positions before 0 fall
// back to section 1.
func SectionOf(x, horizontalMax, sectionSize float64) int {
	s, ok := sectionOf(x, horizontalMax, sectionSize)
	if !ok {
		return 1
	}
	return s
}

func sectionOf(x, horizontalMax, sectionSize float64) (int, bool) {
	if sectionSize <= 0 {
		return 0, false
	}
	// tolerate max/size landing a hair under a whole number
	sections := int(horizontalMax/sectionSize + 1e-9)
	if x >= horizontalMax {
		return sections, true
	}
	for i := 0; i < sections; i++ {
		lo := sectionSize * float64(i)
		if lo <= x && x <= lo+sectionSize {
			return i + 1, true
		}
	}
	return 0, false
}

func (d *Director) preSpawnDelay() float64 {
	if d.deps.Counts != nil {
		if s, ok := d.deps.Counts.PreSpawnDelay(); ok {
			return s
		}
	}
	lo, hi := d.opts.PreSpawnMin, d.opts.PreSpawnMax
	return lo + d.deps.Rand.Float64()*(hi-lo)
}

func (d *Director) setPhase(p Phase) {
	from := d.phase
	d.phase = p
	d.log.Info("encounter phase", zap.Stringer("from", from), zap.Stringer("to", p))
	if d.deps.Bus != nil {
		event.Emit(d.deps.Bus, event.EncounterPhaseChanged{From: from.String(), To: p.String()})
	}
}

func (d *Director) spawnBoss() {
	arch := d.deps.Table.Boss()
	pos := d.bossPosition()
	d.boss = d.spawn(arch, pos, d.deps.Player.ZIndex)
	d.record(persist.WaveRecord{
		Section:    d.section,
		Archetype:  arch.ID,
		RightCount: 1,
		Boss:       true,
	})
}

// spawnTerminal places the post-boss entity where the boss stood. It is not
// tracked: nothing waits for it to leave.
func (d *Director) spawnTerminal() {
	arch := d.deps.Table.Terminal()
	n := d.deps.Host.CreateInstance(arch.ID)
	n.Position = d.bossPosition()
	n.ZIndex = d.opts.TerminalZ
	d.deps.Host.AddChild(d.deps.Root, n)
	d.terminal = n
	d.log.Info("terminal entity spawned", zap.String("archetype", arch.ID))
}

func (d *Director) bossPosition() scene.Vec2 {
	return scene.Vec2{
		X: d.deps.Level.Boundary.W - d.opts.BossInset,
		Y: d.deps.Level.FloorY,
	}
}

// spawn creates a tracked unit of arch under the level root.
func (d *Director) spawn(arch *data.Archetype, pos scene.Vec2, z int) *scene.Node {
	n := d.deps.Host.CreateInstance(arch.ID)
	n.Position = pos
	n.ZIndex = z
	d.deps.Host.AddChild(d.deps.Root, n)
	d.deps.Host.Subscribe(n, scene.EventDestroyed, d.deps.Root, d.onDestroyed)
	d.live[n.ID] = liveUnit{node: n, class: arch.Class}
	d.byClass[arch.Class] = append(d.byClass[arch.Class], n)
	d.liveChanged()
	return n
}

func (d *Director) onDestroyed(n *scene.Node) {
	u, ok := d.live[n.ID]
	if !ok {
		return
	}
	delete(d.live, n.ID)
	nodes := d.byClass[u.class]
	for i, c := range nodes {
		if c == n {
			d.byClass[u.class] = append(nodes[:i], nodes[i+1:]...)
			break
		}
	}
	d.liveChanged()
}

func (d *Director) liveChanged() {
	if d.deps.Metrics != nil {
		d.deps.Metrics.SetLiveEnemies(len(d.live))
	}
}

func (d *Director) record(r persist.WaveRecord) {
	r.LevelID = d.opts.LevelID
	if d.deps.Clock != nil {
		r.GameTime = d.deps.Clock()
	}
	if d.deps.Journal != nil {
		d.deps.Journal.RecordWave(r)
	}
	if d.deps.Metrics != nil {
		d.deps.Metrics.WaveSpawned(r.Archetype, r.Units())
	}
}

// release drops the director's bookkeeping. It runs on every exit from Run.
func (d *Director) release() {
	for _, u := range d.live {
		d.deps.Host.Unsubscribe(u.node, d.deps.Root)
	}
	d.live = make(map[ecs.EntityID]liveUnit)
	d.byClass = make(map[data.Class][]*scene.Node)
	d.cooldown.Reset()
	d.liveChanged()
}
