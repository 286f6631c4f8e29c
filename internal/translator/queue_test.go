package translator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/glossa/internal/db"
	"horse.fit/glossa/internal/openai"
)

func TestQueue_SecondEnqueueRejectedWhileRunning(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})

	sets := &stubSetStore{
		project:   db.ProjectRecord{ID: 3, Name: "Demo"},
		set:       db.SetRecord{ID: 9, ProjectID: 3, Name: "German", Locale: "de"},
		pages:     map[int][]db.TranslationEntry{1: entriesRange(1, 5)},
		foundRows: 5,
	}
	client := &stubClient{
		respond: func(call int, _ []openai.BatchItem) ([]openai.TranslationResult, error) {
			if call == 1 {
				close(started)
				<-release
			}
			return nil, nil
		},
	}
	runner := newTestRunner(sets, client, &progressRecorder{}, &stubLogStore{}, &stubStatsStore{})

	gate := NewGate()
	queue := NewQueue(runner, gate, time.Minute, zerolog.Nop())

	if err := queue.Enqueue(context.Background(), 9, "de"); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	<-started

	if err := queue.Enqueue(context.Background(), 9, "de"); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	close(release)
	queue.Wait()

	if err := queue.Enqueue(context.Background(), 9, "de"); err != nil {
		t.Fatalf("enqueue after finish: %v", err)
	}
	queue.Wait()
}

func TestQueue_MissingSetDoesNotClaimGate(t *testing.T) {
	t.Parallel()

	sets := &stubSetStore{setErr: db.ErrNoRows}
	client := &stubClient{
		respond: func(_ int, _ []openai.BatchItem) ([]openai.TranslationResult, error) {
			return nil, nil
		},
	}
	runner := newTestRunner(sets, client, &progressRecorder{}, &stubLogStore{}, &stubStatsStore{})

	gate := NewGate()
	queue := NewQueue(runner, gate, time.Minute, zerolog.Nop())

	if err := queue.Enqueue(context.Background(), 9, "de"); !db.IsNoRows(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if !gate.TryStart(RunKey) {
		t.Fatal("expected gate to be free after failed enqueue")
	}
}
