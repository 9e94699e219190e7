package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Class drives the population rule the director applies to an archetype.
type Class string

const (
	ClassWeak     Class = "weak"     // section + randint(0,2) units
	ClassMid      Class = "mid"      // at most a pair alive level-wide
	ClassElite    Class = "elite"    // randint(1,3) units
	ClassBoss     Class = "boss"     // spawned once after the last section
	ClassTerminal Class = "terminal" // post-boss entity
)

func (c Class) valid() bool {
	switch c {
	case ClassWeak, ClassMid, ClassElite, ClassBoss, ClassTerminal:
		return true
	}
	return false
}

// Archetype is a spawnable enemy (or terminal entity) template.
type Archetype struct {
	ID    string `yaml:"id"`
	Class Class  `yaml:"class"`
	Scene string `yaml:"scene"`
}

// AreaType classifies a gated area of a level.
type AreaType string

const (
	AreaIntro   AreaType = "intro"
	AreaNormal  AreaType = "normal"
	AreaPowerUp AreaType = "power_up"
	AreaBoss    AreaType = "boss"
	AreaEnd     AreaType = "end"
)

// Area is a stretch of a level between two gates. Only normal areas carry
// sections.
type Area struct {
	Area     int        `yaml:"area"`
	Type     AreaType   `yaml:"type"`
	Width    float64    `yaml:"width"`
	Sections [][]string `yaml:"sections"`
}

// IsSectionLast reports whether the 0-based section index is the area's last.
func (a *Area) IsSectionLast(index int) bool {
	return len(a.Sections) > 0 && index == len(a.Sections)-1
}

type waveTableFile struct {
	Archetypes []Archetype      `yaml:"archetypes"`
	Sections   map[int][]string `yaml:"sections"`
	Areas      []Area           `yaml:"areas"`
}

// WaveTable resolves section numbers to archetype pools for one level.
type WaveTable struct {
	archetypes map[string]*Archetype
	order      []*Archetype
	sections   map[int][]*Archetype
	areas      map[int]*Area
	area       *Area

	weakest  *Archetype
	boss     *Archetype
	terminal *Archetype
}

// LoadWaveTable reads a wave table from YAML. area selects a level area's
// sections; 0 selects the file's top-level section map.
func LoadWaveTable(path string, area int) (*WaveTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wave_table: %w", err)
	}
	t, err := ParseWaveTable(raw, area)
	if err != nil {
		return nil, fmt.Errorf("parse wave_table: %w", err)
	}
	return t, nil
}

// ParseWaveTable builds a table from YAML bytes.
func ParseWaveTable(raw []byte, area int) (*WaveTable, error) {
	var f waveTableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return build(f, area)
}

func build(f waveTableFile, area int) (*WaveTable, error) {
	t := &WaveTable{
		archetypes: make(map[string]*Archetype, len(f.Archetypes)),
		sections:   make(map[int][]*Archetype),
		areas:      make(map[int]*Area, len(f.Areas)),
	}
	for i := range f.Archetypes {
		a := &f.Archetypes[i]
		if !a.Class.valid() {
			return nil, fmt.Errorf("archetype %q: unknown class %q", a.ID, a.Class)
		}
		if _, dup := t.archetypes[a.ID]; dup {
			return nil, fmt.Errorf("archetype %q defined twice", a.ID)
		}
		t.archetypes[a.ID] = a
		t.order = append(t.order, a)
		switch {
		case a.Class == ClassWeak && t.weakest == nil:
			t.weakest = a
		case a.Class == ClassBoss && t.boss == nil:
			t.boss = a
		case a.Class == ClassTerminal && t.terminal == nil:
			t.terminal = a
		}
	}
	if t.weakest == nil || t.boss == nil || t.terminal == nil {
		return nil, fmt.Errorf("wave table needs a weak, a boss and a terminal archetype")
	}
	for i := range f.Areas {
		a := &f.Areas[i]
		t.areas[a.Area] = a
	}

	sections := f.Sections
	if area != 0 {
		a, ok := t.areas[area]
		if !ok {
			return nil, fmt.Errorf("area %d not defined", area)
		}
		if len(a.Sections) == 0 {
			return nil, fmt.Errorf("area %d (%s) has no sections", area, a.Type)
		}
		t.area = a
		sections = make(map[int][]string, len(a.Sections))
		for i, ids := range a.Sections {
			sections[i+1] = ids
		}
	}
	for section, ids := range sections {
		pool := make([]*Archetype, 0, len(ids))
		for _, id := range ids {
			a, ok := t.archetypes[id]
			if !ok {
				return nil, fmt.Errorf("section %d: unknown archetype %q", section, id)
			}
			pool = append(pool, a)
		}
		t.sections[section] = pool
	}
	return t, nil
}

// DefaultWaveTable is the built-in five-section table.
func DefaultWaveTable() *WaveTable {
	t, err := build(waveTableFile{
		Archetypes: []Archetype{
			{ID: "rabbit", Class: ClassWeak, Scene: "scenes/characters/enemy_rabbit.cscn"},
			{ID: "jester", Class: ClassMid, Scene: "scenes/characters/enemy_jester.cscn"},
			{ID: "crow", Class: ClassElite, Scene: "scenes/characters/enemy_crow.cscn"},
			{ID: "boss", Class: ClassBoss, Scene: "scenes/characters/enemy_boss.cscn"},
			{ID: "wandering_soul", Class: ClassTerminal},
		},
		Sections: map[int][]string{
			1: {"rabbit"},
			2: {"rabbit", "jester"},
			3: {"rabbit", "jester"},
			4: {"rabbit", "jester", "crow"},
			5: {"rabbit", "jester", "crow"},
		},
	}, 0)
	if err != nil {
		panic(err)
	}
	return t
}

// Pool returns the archetypes eligible in section. Sections missing from
// the table fall back to the weakest archetype.
func (t *WaveTable) Pool(section int) []*Archetype {
	if pool, ok := t.sections[section]; ok && len(pool) > 0 {
		return pool
	}
	return []*Archetype{t.weakest}
}

// HasSection reports whether section has its own pool.
func (t *WaveTable) HasSection(section int) bool {
	_, ok := t.sections[section]
	return ok
}

func (t *WaveTable) Get(id string) *Archetype { return t.archetypes[id] }
func (t *WaveTable) Weakest() *Archetype      { return t.weakest }
func (t *WaveTable) Boss() *Archetype         { return t.boss }
func (t *WaveTable) Terminal() *Archetype     { return t.terminal }
func (t *WaveTable) Archetypes() []*Archetype { return t.order }
func (t *WaveTable) Count() int               { return len(t.order) }
func (t *WaveTable) SectionCount() int        { return len(t.sections) }
func (t *WaveTable) Area(n int) *Area         { return t.areas[n] }

// Width is the selected area's width, or 0 when the table does not fix one.
func (t *WaveTable) Width() float64 {
	if t.area == nil {
		return 0
	}
	return t.area.Width
}
