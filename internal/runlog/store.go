package runlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"horse.fit/glossa/internal/db"
)

// DefaultRetentionAge keeps roughly six months of history. Retention is
// age-based only; entries are never evicted by count.
const DefaultRetentionAge = 6 * 30 * 24 * time.Hour

// ErrorRecord is one structured error captured during a run.
type ErrorRecord struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APICall records token usage and model for one translation API call.
type APICall struct {
	TokensUsed int64  `json:"tokens_used"`
	Model      string `json:"model"`
}

// Metadata carries the run summary stored on each entry.
type Metadata struct {
	ProjectID       int64     `json:"project_id"`
	SetID           int64     `json:"set_id"`
	TranslatedItems int       `json:"translated_items"`
	TotalItems      int       `json:"total_items"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	DurationSeconds int64     `json:"duration"`
}

// Entry is one immutable run log record.
type Entry struct {
	ID         int64         `json:"id"`
	UUID       string        `json:"uuid"`
	Title      string        `json:"title"`
	Errors     []ErrorRecord `json:"errors"`
	APICalls   []APICall     `json:"api_calls"`
	Metadata   Metadata      `json:"metadata"`
	TokensUsed int64         `json:"tokens_used"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Store persists run logs in postgres with age-based retention.
type Store struct {
	pool         *db.Pool
	retentionAge time.Duration
	now          func() time.Time
}

func NewStore(pool *db.Pool, retentionAge time.Duration) *Store {
	if retentionAge <= 0 {
		retentionAge = DefaultRetentionAge
	}
	return &Store{
		pool:         pool,
		retentionAge: retentionAge,
		now:          time.Now,
	}
}

// Add evicts entries past the retention horizon, then inserts one new entry.
// Total token usage is summed from apiCalls and stored denormalized for
// listing and sorting.
func (s *Store) Add(
	ctx context.Context,
	title string,
	errorRecords []ErrorRecord,
	apiCalls []APICall,
	metadata Metadata,
) (int64, string, error) {
	if s == nil || s.pool == nil {
		return 0, "", fmt.Errorf("run log store is not initialized")
	}

	if err := s.evictExpired(ctx); err != nil {
		return 0, "", err
	}

	if errorRecords == nil {
		errorRecords = []ErrorRecord{}
	}
	if apiCalls == nil {
		apiCalls = []APICall{}
	}

	errorsJSON, err := json.Marshal(errorRecords)
	if err != nil {
		return 0, "", fmt.Errorf("marshal log errors: %w", err)
	}
	callsJSON, err := json.Marshal(apiCalls)
	if err != nil {
		return 0, "", fmt.Errorf("marshal log api calls: %w", err)
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return 0, "", fmt.Errorf("marshal log metadata: %w", err)
	}

	var totalTokens int64
	for _, call := range apiCalls {
		totalTokens += call.TokensUsed
	}

	logUUID := uuid.NewString()

	const q = `
INSERT INTO glossa.run_logs (log_uuid, title, errors, api_calls, metadata, tokens_used, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
RETURNING id
`
	var id int64
	if err := s.pool.QueryRow(ctx, q, logUUID, title, errorsJSON, callsJSON, metadataJSON, totalTokens).Scan(&id); err != nil {
		return 0, "", fmt.Errorf("insert run log: %w", err)
	}

	return id, logUUID, nil
}

// GetLatest returns the most recent entry, or nil when no logs exist.
func (s *Store) GetLatest(ctx context.Context) (*Entry, error) {
	const q = `
SELECT l.id, l.log_uuid, l.title, l.errors, l.api_calls, l.metadata, l.tokens_used, l.created_at
FROM glossa.run_logs l
ORDER BY l.created_at DESC, l.id DESC
LIMIT 1
`
	entry, err := s.scanEntry(s.pool.QueryRow(ctx, q))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// Get returns the entry with the given id, or db.ErrNoRows.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	const q = `
SELECT l.id, l.log_uuid, l.title, l.errors, l.api_calls, l.metadata, l.tokens_used, l.created_at
FROM glossa.run_logs l
WHERE l.id = $1
`
	return s.scanEntry(s.pool.QueryRow(ctx, q, id))
}

// GetByUUID returns the entry with the given public uuid, or db.ErrNoRows.
func (s *Store) GetByUUID(ctx context.Context, logUUID string) (*Entry, error) {
	const q = `
SELECT l.id, l.log_uuid, l.title, l.errors, l.api_calls, l.metadata, l.tokens_used, l.created_at
FROM glossa.run_logs l
WHERE l.log_uuid = $1
`
	return s.scanEntry(s.pool.QueryRow(ctx, q, logUUID))
}

// ClearAll removes every entry.
func (s *Store) ClearAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM glossa.run_logs`); err != nil {
		return fmt.Errorf("clear run logs: %w", err)
	}
	return nil
}

// ListAll returns every entry, newest first. Used by the stats recompute.
func (s *Store) ListAll(ctx context.Context) ([]Entry, error) {
	const q = `
SELECT l.id, l.log_uuid, l.title, l.errors, l.api_calls, l.metadata, l.tokens_used, l.created_at
FROM glossa.run_logs l
ORDER BY l.created_at DESC, l.id DESC
`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query run logs: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, 32)
	for rows.Next() {
		entry, err := scanEntryFromRows(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run logs: %w", err)
	}
	return entries, nil
}

// horizon is the cutoff below which entries are evicted: anything created
// before now minus the retention age is gone on the next Add.
func (s *Store) horizon() time.Time {
	return s.now().Add(-s.retentionAge)
}

func (s *Store) evictExpired(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM glossa.run_logs WHERE created_at < $1`, s.horizon()); err != nil {
		return fmt.Errorf("evict expired run logs: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanEntry(row scanner) (*Entry, error) {
	return scanEntryFromRows(row)
}

func scanEntryFromRows(row scanner) (*Entry, error) {
	var (
		entry        Entry
		errorsJSON   []byte
		callsJSON    []byte
		metadataJSON []byte
	)
	if err := row.Scan(
		&entry.ID,
		&entry.UUID,
		&entry.Title,
		&errorsJSON,
		&callsJSON,
		&metadataJSON,
		&entry.TokensUsed,
		&entry.CreatedAt,
	); err != nil {
		if db.IsNoRows(err) {
			return nil, db.ErrNoRows
		}
		return nil, fmt.Errorf("scan run log: %w", err)
	}

	if err := json.Unmarshal(errorsJSON, &entry.Errors); err != nil {
		return nil, fmt.Errorf("unmarshal log errors: %w", err)
	}
	if err := json.Unmarshal(callsJSON, &entry.APICalls); err != nil {
		return nil, fmt.Errorf("unmarshal log api calls: %w", err)
	}
	if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal log metadata: %w", err)
	}
	return &entry, nil
}
