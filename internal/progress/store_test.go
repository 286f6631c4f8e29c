package progress

import (
	"context"
	"testing"
	"time"
)

type stubInspector struct {
	ref   LogRef
	err   error
	calls int
}

func (s *stubInspector) InspectLog(_ context.Context, _ int64) (LogRef, error) {
	s.calls++
	if s.err != nil {
		return LogRef{}, s.err
	}
	return s.ref, nil
}

func TestStore_ReadMissingReturnsZeroRecord(t *testing.T) {
	t.Parallel()

	store := NewStore()
	record := store.Read(context.Background(), 1, 2)
	if record != (Record{}) {
		t.Fatalf("expected zero record, got %+v", record)
	}
}

func TestStore_WriteThenRead(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Write(1, 2, 50, 120, false, 0)

	record := store.Read(context.Background(), 1, 2)
	if record.Translated != 50 || record.Total != 120 || record.Completed {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Success != nil || record.LogURL != "" {
		t.Fatalf("incomplete record must not carry derived fields: %+v", record)
	}
}

func TestStore_RecordExpires(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := func() time.Time { return now }
	store := NewStore(WithTTL(time.Hour), WithClock(clock))

	store.Write(1, 2, 10, 20, false, 0)

	now = now.Add(30 * time.Minute)
	if record := store.Read(context.Background(), 1, 2); record.Translated != 10 {
		t.Fatalf("record expired too early: %+v", record)
	}

	now = now.Add(31 * time.Minute)
	if record := store.Read(context.Background(), 1, 2); record != (Record{}) {
		t.Fatalf("expected expired record to read as zero, got %+v", record)
	}
}

func TestStore_WriteRefreshesExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := func() time.Time { return now }
	store := NewStore(WithTTL(time.Hour), WithClock(clock))

	store.Write(1, 2, 10, 20, false, 0)
	now = now.Add(50 * time.Minute)
	store.Write(1, 2, 15, 20, false, 0)
	now = now.Add(50 * time.Minute)

	if record := store.Read(context.Background(), 1, 2); record.Translated != 15 {
		t.Fatalf("expected refreshed record to survive, got %+v", record)
	}
}

func TestStore_CompletedReadDerivesSuccessAndLogURL(t *testing.T) {
	t.Parallel()

	inspector := &stubInspector{ref: LogRef{UUID: "abc-123", HasErrors: false}}
	store := NewStore(WithLogInspector(inspector, "https://example.org/logs/"))

	store.Write(1, 2, 120, 120, true, 7)

	record := store.Read(context.Background(), 1, 2)
	if !record.Completed {
		t.Fatalf("expected completed record, got %+v", record)
	}
	if record.Success == nil || !*record.Success {
		t.Fatalf("expected success=true, got %+v", record.Success)
	}
	if record.LogURL != "https://example.org/logs/abc-123" {
		t.Fatalf("unexpected log url: %q", record.LogURL)
	}
	if inspector.calls != 1 {
		t.Fatalf("unexpected inspector call count: %d", inspector.calls)
	}
}

func TestStore_CompletedReadWithLogErrorsIsFailure(t *testing.T) {
	t.Parallel()

	inspector := &stubInspector{ref: LogRef{UUID: "abc-123", HasErrors: true}}
	store := NewStore(WithLogInspector(inspector, "/logs/"))

	store.Write(1, 2, 0, 10, true, 7)

	record := store.Read(context.Background(), 1, 2)
	if record.Success == nil || *record.Success {
		t.Fatalf("expected success=false, got %+v", record.Success)
	}
}

func TestStore_CompletedReadWithoutLogHasNoDerivedFields(t *testing.T) {
	t.Parallel()

	inspector := &stubInspector{}
	store := NewStore(WithLogInspector(inspector, "/logs/"))

	store.Write(1, 2, 5, 5, true, 0)

	record := store.Read(context.Background(), 1, 2)
	if record.Success != nil || record.LogURL != "" {
		t.Fatalf("expected no derived fields without a log reference, got %+v", record)
	}
	if inspector.calls != 0 {
		t.Fatalf("inspector must not be called without a log id")
	}
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Write(1, 2, 1, 1, false, 0)

	store.Delete(1, 2)
	store.Delete(1, 2)

	if record := store.Read(context.Background(), 1, 2); record != (Record{}) {
		t.Fatalf("expected record to be gone, got %+v", record)
	}
}
