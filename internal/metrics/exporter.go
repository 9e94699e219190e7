// Package metrics exposes director and task counters to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Exporter owns the director's collectors. A nil *Exporter is valid and
// records nothing.
type Exporter struct {
	wavesSpawned   *prom.CounterVec
	unitsSpawned   *prom.CounterVec
	midCapSkips    prom.Counter
	liveEnemies    prom.Gauge
	section        prom.Gauge
	taskFaults     *prom.CounterVec
	rootStepSecond prom.Histogram
}

// NewExporter creates and registers the collectors on reg (the default
// registerer when nil). Collectors already registered under the same name
// are reused.
func NewExporter(namespace string, reg prom.Registerer) (*Exporter, error) {
	if namespace == "" {
		namespace = "director"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	waves := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "waves_spawned_total",
		Help:      "Total number of enemy waves spawned, boss included.",
	}, []string{"archetype"})
	units := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "units_spawned_total",
		Help:      "Total number of enemy units spawned.",
	}, []string{"archetype"})
	skips := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "mid_cap_skips_total",
		Help:      "Waves skipped because the mid-class population cap was reached.",
	})
	live := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "live_enemies",
		Help:      "Enemies currently tracked by the director.",
	})
	section := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "director_section",
		Help:      "Level section the player is in.",
	})
	faults := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_faults_total",
		Help:      "Total number of task steps that returned an error or panicked.",
	}, []string{"task"})
	step := prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "root_step_seconds",
		Help:      "Wall time of one root task step.",
		Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01},
	})

	var err error
	if waves, err = registerCollector(reg, waves); err != nil {
		return nil, err
	}
	if units, err = registerCollector(reg, units); err != nil {
		return nil, err
	}
	if skips, err = registerCollector(reg, skips); err != nil {
		return nil, err
	}
	if live, err = registerCollector(reg, live); err != nil {
		return nil, err
	}
	if section, err = registerCollector(reg, section); err != nil {
		return nil, err
	}
	if faults, err = registerCollector(reg, faults); err != nil {
		return nil, err
	}
	if step, err = registerCollector(reg, step); err != nil {
		return nil, err
	}

	return &Exporter{
		wavesSpawned:   waves,
		unitsSpawned:   units,
		midCapSkips:    skips,
		liveEnemies:    live,
		section:        section,
		taskFaults:     faults,
		rootStepSecond: step,
	}, nil
}

// WaveSpawned counts one wave of units enemies of archetype.
func (m *Exporter) WaveSpawned(archetype string, units int) {
	if m == nil {
		return
	}
	a := normalizeLabel(archetype, "unknown")
	m.wavesSpawned.WithLabelValues(a).Inc()
	m.unitsSpawned.WithLabelValues(a).Add(float64(units))
}

func (m *Exporter) MidCapSkipped() {
	if m == nil {
		return
	}
	m.midCapSkips.Inc()
}

func (m *Exporter) SetLiveEnemies(n int) {
	if m == nil {
		return
	}
	m.liveEnemies.Set(float64(n))
}

func (m *Exporter) SetSection(n int) {
	if m == nil {
		return
	}
	m.section.Set(float64(n))
}

// TaskFault counts a faulted step of the named task.
func (m *Exporter) TaskFault(task string) {
	if m == nil {
		return
	}
	m.taskFaults.WithLabelValues(normalizeLabel(task, "unknown")).Inc()
}

// ObserveRootStep records how long one root task step took.
func (m *Exporter) ObserveRootStep(d time.Duration) {
	if m == nil {
		return
	}
	m.rootStepSecond.Observe(d.Seconds())
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
