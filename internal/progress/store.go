package progress

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultTTL bounds how long an abandoned progress record survives. Every
// write refreshes the deadline.
const DefaultTTL = time.Hour

// Record is the pollable snapshot of one translation run. Success and LogURL
// are materialized at read time once the run has completed; they are never
// stored.
type Record struct {
	Translated int    `json:"translated"`
	Total      int    `json:"total"`
	Completed  bool   `json:"completed"`
	LogID      int64  `json:"log_id,omitempty"`
	Success    *bool  `json:"success,omitempty"`
	LogURL     string `json:"log_url,omitempty"`
}

// LogRef describes the log entry a completed progress record points at.
type LogRef struct {
	UUID      string
	HasErrors bool
}

// LogInspector resolves a log id into the details needed to derive the
// success flag and deep link.
type LogInspector interface {
	InspectLog(ctx context.Context, logID int64) (LogRef, error)
}

type key struct {
	projectID int64
	setID     int64
}

type entry struct {
	record    Record
	expiresAt time.Time
}

// Store is a keyed, expiring in-memory progress store. Safe for concurrent
// readers and writers; the admission gate keeps two writers off the same key.
type Store struct {
	mu      sync.Mutex
	records map[key]entry

	ttl        time.Duration
	now        func() time.Time
	inspector  LogInspector
	logBaseURL string
}

type Option func(*Store)

// WithTTL overrides the record expiry window.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogInspector wires the log lookup used to derive success and log_url on
// completed reads.
func WithLogInspector(inspector LogInspector, baseURL string) Option {
	return func(s *Store) {
		s.inspector = inspector
		s.logBaseURL = baseURL
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		records: make(map[key]entry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write upserts the record for (projectID, setID) and resets its expiry.
// LogID zero means "no log yet".
func (s *Store) Write(projectID, setID int64, translated, total int, completed bool, logID int64) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key{projectID: projectID, setID: setID}] = entry{
		record: Record{
			Translated: translated,
			Total:      total,
			Completed:  completed,
			LogID:      logID,
		},
		expiresAt: s.now().Add(s.ttl),
	}
}

// Read returns the current record, or the zero record when none exists or the
// stored one has expired. A completed record with a log reference gains the
// derived success flag and log deep link.
func (s *Store) Read(ctx context.Context, projectID, setID int64) Record {
	if s == nil {
		return Record{}
	}

	s.mu.Lock()
	k := key{projectID: projectID, setID: setID}
	stored, ok := s.records[k]
	if ok && !s.now().Before(stored.expiresAt) {
		delete(s.records, k)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return Record{}
	}

	record := stored.record
	if record.Completed && record.LogID > 0 && s.inspector != nil {
		ref, err := s.inspector.InspectLog(ctx, record.LogID)
		if err == nil {
			success := !ref.HasErrors
			record.Success = &success
			record.LogURL = joinLogURL(s.logBaseURL, ref.UUID)
		}
	}
	return record
}

// Delete removes the record. Removing a missing key is not an error.
func (s *Store) Delete(projectID, setID int64) {
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.records, key{projectID: projectID, setID: setID})
	s.mu.Unlock()
}

func joinLogURL(base, logUUID string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "/logs/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + logUUID
}
