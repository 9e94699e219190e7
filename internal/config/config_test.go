package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[level]
sections = 4
time_scale = 0.5

[director]
wave_cooldown = 20.0

[loop]
tick_rate = "33ms"
seed = 7
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Level.Sections != 4 || cfg.Level.TimeScale != 0.5 {
		t.Fatalf("level = %+v", cfg.Level)
	}
	if cfg.Director.WaveCooldown != 20 {
		t.Fatalf("wave_cooldown = %v, want 20", cfg.Director.WaveCooldown)
	}
	if cfg.Loop.TickRate != 33*time.Millisecond || cfg.Loop.Seed != 7 {
		t.Fatalf("loop = %+v", cfg.Loop)
	}
	// untouched keys keep their defaults
	if cfg.Level.BoundaryW != 896 || cfg.Director.HalfWidth != 96 || cfg.Clouds.Max != 10 {
		t.Fatalf("defaults lost: level=%+v director=%+v clouds=%+v", cfg.Level, cfg.Director, cfg.Clouds)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []string{
		"[level]\nsections = 0",
		"[level]\nboundary_w = -1.0",
		"[director]\npre_spawn_min = 3.0\npre_spawn_max = 1.0",
		"[level\nbroken",
	}
	for _, src := range tests {
		if _, err := Parse([]byte(src)); err == nil {
			t.Fatalf("Parse(%q) succeeded, want error", src)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("Load of missing file succeeded")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "director.toml")
	if err := os.WriteFile(path, []byte("[clouds]\nmax = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Clouds.Max != 3 {
		t.Fatalf("clouds.max = %d, want 3", cfg.Clouds.Max)
	}
}

func TestShippedConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "director.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Defaults()
	if cfg.Level != def.Level || cfg.Director != def.Director || cfg.Loop != def.Loop {
		t.Fatalf("shipped config drifted from defaults:\n%+v\n%+v", cfg, def)
	}
	if cfg.Database.ConnMaxLifetime != 30*time.Minute || cfg.Database.FlushTimeout != 2*time.Second {
		t.Fatalf("database durations = %+v", cfg.Database)
	}
}
