package translator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrAlreadyRunning rejects a trigger while another run holds the gate.
var ErrAlreadyRunning = errors.New("another translation run is already in progress")

// Queue admits at most one background run at a time and executes it on its
// own goroutine with a bounded lifetime.
type Queue struct {
	runner     *Runner
	gate       *Gate
	runTimeout time.Duration
	logger     zerolog.Logger

	wg sync.WaitGroup
}

func NewQueue(runner *Runner, gate *Gate, runTimeout time.Duration, logger zerolog.Logger) *Queue {
	if runTimeout <= 0 {
		runTimeout = 10 * time.Minute
	}
	return &Queue{
		runner:     runner,
		gate:       gate,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

// Enqueue validates the target set, claims the gate and starts the run in
// the background. A failed validation claims nothing and leaves no trace, so
// the caller can report not-found without a phantom log entry appearing.
func (q *Queue) Enqueue(ctx context.Context, setID int64, targetLanguage string) error {
	if _, _, err := q.runner.Validate(ctx, setID); err != nil {
		return err
	}

	if !q.gate.TryStart(RunKey) {
		return ErrAlreadyRunning
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer q.gate.Finish(RunKey)

		runCtx, cancel := context.WithTimeout(context.Background(), q.runTimeout)
		defer cancel()

		report, err := q.runner.Run(runCtx, setID, targetLanguage)
		if err != nil {
			// The set vanished between validation and the run. The lookup
			// asymmetry applies: no progress, no log.
			q.logger.Warn().Err(err).Int64("set_id", setID).Msg("background run aborted before start")
			return
		}

		q.logger.Info().
			Int64("set_id", setID).
			Int("translated", report.Translated).
			Int("total", report.Total).
			Int("errors", len(report.Errors)).
			Int64("log_id", report.LogID).
			Msg("background run finished")
	}()

	return nil
}

// Wait blocks until every in-flight run has finished. Used on shutdown.
func (q *Queue) Wait() {
	q.wg.Wait()
}
