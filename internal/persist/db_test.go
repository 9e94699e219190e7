package persist

import (
	"testing"
	"time"

	"github.com/l1jgo/director/internal/config"
)

func TestPoolConfigFromDatabaseSection(t *testing.T) {
	cfg := config.Defaults().Database
	cfg.MaxOpenConns = 3
	cfg.MaxIdleConns = 8
	cfg.ConnMaxLifetime = 10 * time.Minute

	pc, err := poolConfig(cfg)
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if pc.MaxConns != 3 {
		t.Fatalf("MaxConns = %d, want 3", pc.MaxConns)
	}
	if pc.MinConns != 3 {
		t.Fatalf("MinConns = %d, want clamp to 3", pc.MinConns)
	}
	if pc.MaxConnLifetime != 10*time.Minute {
		t.Fatalf("MaxConnLifetime = %v", pc.MaxConnLifetime)
	}
	if got := pc.ConnConfig.RuntimeParams["application_name"]; got != applicationName {
		t.Fatalf("application_name = %q, want %q", got, applicationName)
	}
	if pc.ConnConfig.Database != "director" {
		t.Fatalf("database = %q, want director", pc.ConnConfig.Database)
	}
}

func TestPoolConfigKeepsDSNApplicationName(t *testing.T) {
	cfg := config.Defaults().Database
	cfg.DSN = "postgres://u:p@localhost:5432/x?application_name=replay"
	pc, err := poolConfig(cfg)
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if got := pc.ConnConfig.RuntimeParams["application_name"]; got != "replay" {
		t.Fatalf("application_name = %q, want replay", got)
	}
}

func TestPoolConfigRejectsBadDSN(t *testing.T) {
	cfg := config.Defaults().Database
	cfg.DSN = "postgres://%zz"
	if _, err := poolConfig(cfg); err == nil {
		t.Fatal("poolConfig accepted a malformed dsn")
	}
}
