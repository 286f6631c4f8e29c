package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/glossa/internal/cli"
	"horse.fit/glossa/internal/config"
	"horse.fit/glossa/internal/db"
	"horse.fit/glossa/internal/logging"
	"horse.fit/glossa/internal/openai"
	"horse.fit/glossa/internal/progress"
	"horse.fit/glossa/internal/runlog"
	"horse.fit/glossa/internal/settings"
	"horse.fit/glossa/internal/stats"
	"horse.fit/glossa/internal/translator"
)

// runtime holds everything a command needs once config, logging and the
// database are up.
type runtime struct {
	cfg    *config.Config
	logger zerolog.Logger
	pool   *db.Pool

	sets          *db.GlotPressStore
	logStore      *runlog.Store
	statsStore    *stats.Store
	settingsStore *settings.Store
	progressStore *progress.Store
	runner        *translator.Runner
}

func newRuntime(ctx context.Context, envLoader *cli.EnvLoader) (*runtime, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(dbCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sets := db.NewGlotPressStore(pool)
	logStore := runlog.NewStore(pool, cfg.LogRetentionAge)
	statsStore := stats.NewStore(pool)
	settingsStore := settings.NewStore(pool)

	progressStore := progress.NewStore(
		progress.WithTTL(cfg.ProgressTTL),
		progress.WithLogInspector(logInspector{logs: logStore}, cfg.LogBaseURL),
	)

	client := openai.NewClient(cfg.OpenAIEndpoint, cfg.OpenAITimeout, settingsStore)
	runner := translator.NewRunner(
		sets,
		client,
		progressStore,
		logStore,
		statsStore,
		logger,
		cfg.PageSize,
		cfg.MaxPages,
	)

	return &runtime{
		cfg:           cfg,
		logger:        logger,
		pool:          pool,
		sets:          sets,
		logStore:      logStore,
		statsStore:    statsStore,
		settingsStore: settingsStore,
		progressStore: progressStore,
		runner:        runner,
	}, nil
}

func (r *runtime) Close() {
	if r == nil || r.pool == nil {
		return
	}
	_ = r.pool.Close()
}

// logInspector lets the progress store derive success and the deep link from
// a run log without depending on the log package directly.
type logInspector struct {
	logs *runlog.Store
}

func (a logInspector) InspectLog(ctx context.Context, logID int64) (progress.LogRef, error) {
	entry, err := a.logs.Get(ctx, logID)
	if err != nil {
		return progress.LogRef{}, err
	}
	return progress.LogRef{
		UUID:      entry.UUID,
		HasErrors: len(entry.Errors) > 0,
	}, nil
}

// logSummaries feeds the stats recompute from the surviving run logs.
type logSummaries struct {
	logs *runlog.Store
}

func (a logSummaries) SummarizeRuns(ctx context.Context) ([]stats.RunSummary, error) {
	entries, err := a.logs.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]stats.RunSummary, 0, len(entries))
	for _, entry := range entries {
		summaries = append(summaries, stats.RunSummary{TokensUsed: entry.TokensUsed})
	}
	return summaries, nil
}
