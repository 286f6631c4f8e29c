package stats

import (
	"context"
	"fmt"
	"time"

	"horse.fit/glossa/internal/db"
)

// Snapshot is the aggregate usage counters row.
type Snapshot struct {
	TranslationsStarted int64     `json:"translations_started"`
	TokensUsed          int64     `json:"tokens_used"`
	LastReset           time.Time `json:"last_reset"`
	LastUpdated         time.Time `json:"last_updated"`
}

// RunSummary is one log entry's contribution when recomputing counters.
type RunSummary struct {
	TokensUsed int64
}

// LogSource lists the run logs the recompute walks over.
type LogSource interface {
	SummarizeRuns(ctx context.Context) ([]RunSummary, error)
}

// Store keeps a single aggregate counters row in postgres.
type Store struct {
	pool *db.Pool
}

func NewStore(pool *db.Pool) *Store {
	return &Store{pool: pool}
}

// Get returns the counters, seeding the row when it does not exist yet.
func (s *Store) Get(ctx context.Context) (Snapshot, error) {
	if err := s.ensureRow(ctx); err != nil {
		return Snapshot{}, err
	}

	const q = `
SELECT s.translations_started, s.tokens_used, s.last_reset, s.last_updated
FROM glossa.stats s
WHERE s.id = 1
`
	var snap Snapshot
	if err := s.pool.QueryRow(ctx, q).Scan(&snap.TranslationsStarted, &snap.TokensUsed, &snap.LastReset, &snap.LastUpdated); err != nil {
		return Snapshot{}, fmt.Errorf("read stats: %w", err)
	}
	return snap, nil
}

// Increment adds one started run and the given token delta. Counters only
// grow here; Reset and Recompute are the only ways down.
func (s *Store) Increment(ctx context.Context, tokensUsed int64) error {
	if err := s.ensureRow(ctx); err != nil {
		return err
	}

	const q = `
UPDATE glossa.stats
SET translations_started = translations_started + 1,
    tokens_used = tokens_used + $1,
    last_updated = now()
WHERE id = 1
`
	if _, err := s.pool.Exec(ctx, q, tokensUsed); err != nil {
		return fmt.Errorf("increment stats: %w", err)
	}
	return nil
}

// Reset zeroes the counters and stamps last_reset.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.ensureRow(ctx); err != nil {
		return err
	}

	const q = `
UPDATE glossa.stats
SET translations_started = 0,
    tokens_used = 0,
    last_reset = now(),
    last_updated = now()
WHERE id = 1
`
	if _, err := s.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("reset stats: %w", err)
	}
	return nil
}

// RecomputeFromLogs rebuilds the counters from the surviving run logs. Runs
// whose logs aged out no longer count.
func (s *Store) RecomputeFromLogs(ctx context.Context, source LogSource) (Snapshot, error) {
	if source == nil {
		return Snapshot{}, fmt.Errorf("log source is required")
	}

	summaries, err := source.SummarizeRuns(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("summarize run logs: %w", err)
	}

	runs, tokens := foldSummaries(summaries)

	if err := s.ensureRow(ctx); err != nil {
		return Snapshot{}, err
	}

	const q = `
UPDATE glossa.stats
SET translations_started = $1,
    tokens_used = $2,
    last_updated = now()
WHERE id = 1
`
	if _, err := s.pool.Exec(ctx, q, runs, tokens); err != nil {
		return Snapshot{}, fmt.Errorf("recompute stats: %w", err)
	}

	return s.Get(ctx)
}

// foldSummaries reduces the surviving run logs to the counter pair the
// recompute writes: one started run per log, tokens summed across them.
func foldSummaries(summaries []RunSummary) (int64, int64) {
	var tokens int64
	for _, summary := range summaries {
		tokens += summary.TokensUsed
	}
	return int64(len(summaries)), tokens
}

func (s *Store) ensureRow(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("stats store is not initialized")
	}

	const q = `
INSERT INTO glossa.stats (id, translations_started, tokens_used, last_reset, last_updated)
VALUES (1, 0, 0, now(), now())
ON CONFLICT (id) DO NOTHING
`
	if _, err := s.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("seed stats row: %w", err)
	}
	return nil
}
