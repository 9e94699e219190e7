package persist

import (
	"context"
	"fmt"
)

// WaveRecord is one spawned wave (or the boss) as written to the journal.
type WaveRecord struct {
	LevelID    string
	Section    int
	Archetype  string
	LeftCount  int
	RightCount int
	Boss       bool
	GameTime   float64 // seconds of scaled game time since level start
}

// Units is the number of enemies the wave put in the level.
func (r WaveRecord) Units() int { return r.LeftCount + r.RightCount }

type WaveRepo struct {
	db *DB
}

func NewWaveRepo(db *DB) *WaveRepo {
	return &WaveRepo{db: db}
}

// InsertWaves atomically writes a batch of wave records in a single transaction.
func (r *WaveRepo) InsertWaves(ctx context.Context, recs []WaveRecord) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("waves begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, w := range recs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO encounter_waves (level_id, section, archetype, left_count, right_count, boss, game_time)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			w.LevelID, w.Section, w.Archetype, w.LeftCount, w.RightCount, w.Boss, w.GameTime,
		); err != nil {
			return fmt.Errorf("waves insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// CountWaves returns how many waves the journal holds for a level.
func (r *WaveRepo) CountWaves(ctx context.Context, levelID string) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM encounter_waves WHERE level_id = $1`, levelID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count waves: %w", err)
	}
	return n, nil
}
