package runlog

import (
	"testing"
	"time"
)

func TestNewStore_ClampsRetentionAge(t *testing.T) {
	t.Parallel()

	if got := NewStore(nil, 0).retentionAge; got != DefaultRetentionAge {
		t.Fatalf("zero retention age must fall back to default, got %v", got)
	}
	if got := NewStore(nil, -time.Hour).retentionAge; got != DefaultRetentionAge {
		t.Fatalf("negative retention age must fall back to default, got %v", got)
	}
	if got := NewStore(nil, 30*24*time.Hour).retentionAge; got != 30*24*time.Hour {
		t.Fatalf("explicit retention age must be kept, got %v", got)
	}
}

func TestStore_EvictionHorizon(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

	store := NewStore(nil, 0)
	store.now = func() time.Time { return now }
	if got, want := store.horizon(), now.Add(-DefaultRetentionAge); !got.Equal(want) {
		t.Fatalf("unexpected default horizon: got %v want %v", got, want)
	}

	store = NewStore(nil, 24*time.Hour)
	store.now = func() time.Time { return now }
	if got, want := store.horizon(), now.Add(-24*time.Hour); !got.Equal(want) {
		t.Fatalf("unexpected horizon: got %v want %v", got, want)
	}

	// An entry created a minute inside the window survives; a minute outside
	// it is evicted.
	inside := now.Add(-24*time.Hour + time.Minute)
	outside := now.Add(-24*time.Hour - time.Minute)
	if inside.Before(store.horizon()) {
		t.Fatalf("entry at %v must survive horizon %v", inside, store.horizon())
	}
	if !outside.Before(store.horizon()) {
		t.Fatalf("entry at %v must fall past horizon %v", outside, store.horizon())
	}
}
