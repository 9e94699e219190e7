package director

import (
	"go.uber.org/zap"

	"github.com/l1jgo/director/internal/data"
	"github.com/l1jgo/director/internal/persist"
	"github.com/l1jgo/director/internal/scene"
)

// midCap is the number of live mid-class enemies that blocks another one.
const midCap = 2

// Sides lists the directions, relative to the spawn base, a wave in section
// may appear on: only ahead in the first section, only behind in the last,
// either side in between.
func Sides(section, total int) []scene.Vec2 {
	switch {
	case section <= 1:
		return []scene.Vec2{scene.Right}
	case section >= total:
		return []scene.Vec2{scene.Left}
	default:
		return []scene.Vec2{scene.Right, scene.Left}
	}
}

// SpawnWave picks one archetype from the section's pool and places its
// units around base. It returns how many units went to each side.
func (d *Director) SpawnWave(base scene.Vec2, section, total int) (left, right int) {
	sides := Sides(section, total)
	if !d.deps.Table.HasSection(section) {
		d.log.Debug("section missing from wave table, using weakest archetype",
			zap.Int("section", section),
			zap.String("archetype", d.deps.Table.Weakest().ID),
		)
	}
	pool := d.deps.Table.Pool(section)
	arch := pool[d.deps.Rand.Intn(len(pool))]

	pick := func() {
		if sides[d.deps.Rand.Intn(len(sides))] == scene.Left {
			left++
		} else {
			right++
		}
	}

	switch arch.Class {
	case data.ClassWeak:
		n := d.count(arch.Class, section, total, func() int { return section + d.deps.Rand.Intn(3) })
		for i := 0; i < n; i++ {
			pick()
		}
	case data.ClassMid:
		mids := d.byClass[data.ClassMid]
		switch {
		case len(mids) == 0:
			pick()
		case len(mids) < midCap:
			// flank the player opposite the one already out
			if mids[0].Position.X > d.deps.Player.Position.X {
				left++
			} else {
				right++
			}
		default:
			d.log.Warn("mid-class cap reached, skipping wave",
				zap.String("archetype", arch.ID),
				zap.Int("alive", len(mids)),
			)
			if d.deps.Metrics != nil {
				d.deps.Metrics.MidCapSkipped()
			}
			return 0, 0
		}
	case data.ClassElite:
		n := d.count(arch.Class, section, total, func() int { return 1 + d.deps.Rand.Intn(3) })
		for i := 0; i < n; i++ {
			pick()
		}
	default:
		// boss or terminal archetypes listed in a section pool spawn alone
		pick()
	}

	z := d.deps.Player.ZIndex
	step := d.opts.HalfWidth / 4
	leftBase := base.Add(scene.Vec2{X: -d.opts.HalfWidth})
	for i := 0; i < left; i++ {
		d.spawn(arch, leftBase.Add(scene.Vec2{X: float64(i) * -step}), z)
	}
	rightBase := base.Add(scene.Vec2{X: d.opts.HalfWidth})
	for i := 0; i < right; i++ {
		d.spawn(arch, rightBase.Add(scene.Vec2{X: float64(i) * step}), z)
	}

	if left+right > 0 {
		d.log.Debug("wave spawned",
			zap.Int("section", section),
			zap.String("archetype", arch.ID),
			zap.Int("left", left),
			zap.Int("right", right),
		)
		d.record(persist.WaveRecord{
			Section:    section,
			Archetype:  arch.ID,
			LeftCount:  left,
			RightCount: right,
		})
	}
	return left, right
}

func (d *Director) count(class data.Class, section, total int, fallback func() int) int {
	if d.deps.Counts != nil {
		if n, ok := d.deps.Counts.WaveSize(class, section, total); ok {
			return n
		}
	}
	return fallback()
}
