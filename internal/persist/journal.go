package persist

import (
	"context"

	"go.uber.org/zap"
)

// MaxJournalBacklog caps the records held while the database is failing.
// The oldest records are dropped first.
const MaxJournalBacklog = 1024

// WaveWriter stores a batch of wave records. *WaveRepo implements it.
type WaveWriter interface {
	InsertWaves(ctx context.Context, recs []WaveRecord) error
}

// Journal buffers wave records on the game loop until the persist phase
// flushes them. A journal without a writer drops every record.
type Journal struct {
	writer  WaveWriter
	buf     []WaveRecord
	dropped int
	log     *zap.Logger
}

func NewJournal(w WaveWriter, log *zap.Logger) *Journal {
	return &Journal{writer: w, log: log}
}

// Enabled reports whether records are kept for flushing.
func (j *Journal) Enabled() bool { return j.writer != nil }

// RecordWave queues r for the next flush.
func (j *Journal) RecordWave(r WaveRecord) {
	if j.writer == nil {
		j.dropped++
		return
	}
	if len(j.buf) >= MaxJournalBacklog {
		n := len(j.buf) - MaxJournalBacklog + 1
		j.buf = append(j.buf[:0], j.buf[n:]...)
		j.dropped += n
		j.log.Warn("journal backlog full, dropping oldest", zap.Int("dropped", n))
	}
	j.buf = append(j.buf, r)
}

func (j *Journal) Len() int     { return len(j.buf) }
func (j *Journal) Dropped() int { return j.dropped }

// Flush writes the buffered records. On error the batch is kept for the
// next attempt.
func (j *Journal) Flush(ctx context.Context) error {
	if j.writer == nil || len(j.buf) == 0 {
		return nil
	}
	if err := j.writer.InsertWaves(ctx, j.buf); err != nil {
		return err
	}
	j.log.Debug("journal flushed", zap.Int("waves", len(j.buf)))
	j.buf = j.buf[:0]
	return nil
}
