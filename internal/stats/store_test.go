package stats

import (
	"context"
	"testing"
)

func TestFoldSummaries(t *testing.T) {
	t.Parallel()

	runs, tokens := foldSummaries(nil)
	if runs != 0 || tokens != 0 {
		t.Fatalf("empty fold: got runs=%d tokens=%d", runs, tokens)
	}

	runs, tokens = foldSummaries([]RunSummary{
		{TokensUsed: 100},
		{TokensUsed: 0},
		{TokensUsed: 321},
	})
	if runs != 3 {
		t.Fatalf("every log counts as one started run, got %d", runs)
	}
	if tokens != 421 {
		t.Fatalf("unexpected token sum: %d", tokens)
	}
}

func TestRecomputeFromLogs_RequiresSource(t *testing.T) {
	t.Parallel()

	store := NewStore(nil)
	if _, err := store.RecomputeFromLogs(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil log source")
	}
}
