package translator

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/glossa/internal/db"
	"horse.fit/glossa/internal/openai"
	"horse.fit/glossa/internal/runlog"
)

// SetStore is the slice of the translation database the runner needs.
type SetStore interface {
	GetProject(ctx context.Context, projectID int64) (db.ProjectRecord, error)
	GetSet(ctx context.Context, setID int64) (db.SetRecord, error)
	ForTranslation(ctx context.Context, projectID, setID int64, page, pageSize int) ([]db.TranslationEntry, int64, error)
	UpdateTranslation(ctx context.Context, translationID int64, text string) error
	CreateTranslation(ctx context.Context, params db.CreateTranslationParams) (int64, error)
}

// BatchTranslator sends one page of entries to the translation API.
type BatchTranslator interface {
	TranslateBatch(ctx context.Context, items []openai.BatchItem, targetLanguage string) ([]openai.TranslationResult, error)
	LastResponseInfo() (openai.CallInfo, bool)
}

// ProgressWriter receives the pollable run snapshots.
type ProgressWriter interface {
	Write(projectID, setID int64, translated, total int, completed bool, logID int64)
}

// LogStore records the finished run.
type LogStore interface {
	Add(ctx context.Context, title string, errorRecords []runlog.ErrorRecord, apiCalls []runlog.APICall, metadata runlog.Metadata) (int64, string, error)
}

// StatsStore accumulates per-run usage counters.
type StatsStore interface {
	Increment(ctx context.Context, tokensUsed int64) error
}

// RunReport summarizes one finished orchestration.
type RunReport struct {
	ProjectID      int64
	SetID          int64
	TargetLanguage string
	Translated     int
	Total          int
	Pages          int
	Errors         []runlog.ErrorRecord
	LogID          int64
	LogUUID        string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Succeeded reports whether the run finished without recording any error.
func (r RunReport) Succeeded() bool {
	return len(r.Errors) == 0
}

// Runner walks a translation set page by page, sends each page to the
// translation API and persists the answers. Every run, even a failed one,
// finishes by writing a log entry, a final progress record and the usage
// counters. The only exception is a failed pre-run lookup, which leaves no
// trace at all.
type Runner struct {
	sets     SetStore
	client   BatchTranslator
	progress ProgressWriter
	logs     LogStore
	stats    StatsStore
	logger   zerolog.Logger

	pageSize int
	maxPages int
}

func NewRunner(
	sets SetStore,
	client BatchTranslator,
	progress ProgressWriter,
	logs LogStore,
	stats StatsStore,
	logger zerolog.Logger,
	pageSize, maxPages int,
) *Runner {
	if pageSize < 1 {
		pageSize = 50
	}
	if maxPages < 1 {
		maxPages = 3
	}
	return &Runner{
		sets:     sets,
		client:   client,
		progress: progress,
		logs:     logs,
		stats:    stats,
		logger:   logger,
		pageSize: pageSize,
		maxPages: maxPages,
	}
}

// Validate resolves the set and its project without starting a run.
func (r *Runner) Validate(ctx context.Context, setID int64) (db.SetRecord, db.ProjectRecord, error) {
	set, err := r.sets.GetSet(ctx, setID)
	if err != nil {
		return db.SetRecord{}, db.ProjectRecord{}, fmt.Errorf("resolve translation set %d: %w", setID, err)
	}
	project, err := r.sets.GetProject(ctx, set.ProjectID)
	if err != nil {
		return db.SetRecord{}, db.ProjectRecord{}, fmt.Errorf("resolve project %d: %w", set.ProjectID, err)
	}
	return set, project, nil
}

// Run executes one orchestration synchronously. A non-nil error is returned
// only for pre-run lookup failures; everything that goes wrong after admission
// lands in the report's Errors instead.
func (r *Runner) Run(ctx context.Context, setID int64, targetLanguage string) (RunReport, error) {
	set, project, err := r.Validate(ctx, setID)
	if err != nil {
		return RunReport{}, err
	}

	report := RunReport{
		ProjectID:      project.ID,
		SetID:          set.ID,
		TargetLanguage: targetLanguage,
		StartedAt:      time.Now(),
	}
	r.execute(ctx, set, project, &report)
	return report, nil
}

func (r *Runner) execute(ctx context.Context, set db.SetRecord, project db.ProjectRecord, report *RunReport) {
	var apiCalls []runlog.APICall

	defer func() {
		if rec := recover(); rec != nil {
			report.Errors = append(report.Errors, runlog.ErrorRecord{
				Code:    "application_error",
				Message: fmt.Sprintf("panic: %v\n%s", rec, debug.Stack()),
			})
		}
		r.finish(ctx, set, project, report, apiCalls)
	}()

	logger := r.logger.With().
		Int64("project_id", project.ID).
		Int64("set_id", set.ID).
		Str("target_language", report.TargetLanguage).
		Logger()

	for page := 1; page <= r.maxPages; page++ {
		entries, foundRows, err := r.sets.ForTranslation(ctx, project.ID, set.ID, page, r.pageSize)
		if err != nil {
			report.Errors = append(report.Errors, runlog.ErrorRecord{
				Code:    "application_error",
				Message: fmt.Sprintf("fetch page %d: %v", page, err),
			})
			return
		}

		if page == 1 {
			// The total is fixed once, from the first page's count, capped by
			// the page budget. Later pages never move it.
			report.Total = int(foundRows)
			if budget := r.pageSize * r.maxPages; report.Total > budget {
				report.Total = budget
			}
		}

		// The snapshot goes out before the API call so pollers see the page
		// being worked on, not the page already done.
		r.progress.Write(project.ID, set.ID, report.Translated, report.Total, false, 0)

		if len(entries) == 0 {
			return
		}
		report.Pages = page

		items := make([]openai.BatchItem, 0, len(entries))
		byID := make(map[int64]db.TranslationEntry, len(entries))
		for _, entry := range entries {
			items = append(items, openai.BatchItem{
				ID:      entry.OriginalID,
				Text:    entry.Singular,
				Comment: entry.TranslatorComment,
			})
			byID[entry.OriginalID] = entry
		}

		results, err := r.client.TranslateBatch(ctx, items, report.TargetLanguage)
		if err != nil {
			report.Errors = append(report.Errors, errorRecordFromAPIError(err))
			logger.Warn().Err(err).Int("page", page).Msg("translation API call failed")
			return
		}

		if len(results) == 0 {
			logger.Debug().Int("page", page).Msg("page returned no translations")
			continue
		}

		// Call info is only refreshed on a parsed response, so recording it on
		// a declined page would replay the previous call's usage.
		if info, ok := r.client.LastResponseInfo(); ok {
			apiCalls = append(apiCalls, runlog.APICall{
				TokensUsed: info.TokensUsed,
				Model:      info.Model,
			})
		}

		applied := make(map[int64]bool, len(results))
		for _, result := range results {
			entry, ok := byID[result.ID]
			if !ok {
				continue
			}
			if applied[result.ID] {
				continue
			}
			// Empty output means the model skipped the item. Skipping is a
			// policy, not a failure: the entry stays untranslated.
			if strings.TrimSpace(result.TranslatedText) == "" {
				continue
			}
			if err := r.storeResult(ctx, set.ID, entry, result.TranslatedText); err != nil {
				report.Errors = append(report.Errors, runlog.ErrorRecord{
					Code:    "application_error",
					Message: fmt.Sprintf("store translation for original %d: %v", entry.OriginalID, err),
				})
				continue
			}
			applied[result.ID] = true
			report.Translated++
		}
		if report.Translated > report.Total {
			report.Translated = report.Total
		}

		logger.Info().
			Int("page", page).
			Int("translated", report.Translated).
			Int("total", report.Total).
			Msg("translated page")
	}
}

func (r *Runner) storeResult(ctx context.Context, setID int64, entry db.TranslationEntry, text string) error {
	if entry.TranslationID > 0 {
		return r.sets.UpdateTranslation(ctx, entry.TranslationID, text)
	}
	_, err := r.sets.CreateTranslation(ctx, db.CreateTranslationParams{
		OriginalID:       entry.OriginalID,
		TranslationSetID: setID,
		Translation0:     text,
		Status:           db.StatusCurrent,
	})
	return err
}

// finish writes the log entry, the final progress record and the usage
// counters, in that order. It runs detached from the run context so a timed
// out run still leaves a complete trail.
func (r *Runner) finish(
	ctx context.Context,
	set db.SetRecord,
	project db.ProjectRecord,
	report *RunReport,
	apiCalls []runlog.APICall,
) {
	report.FinishedAt = time.Now()

	finishCtx := context.WithoutCancel(ctx)

	title := fmt.Sprintf("Translate translation set %q for project %q", set.Name, project.Name)
	logID, logUUID, err := r.logs.Add(finishCtx, title, report.Errors, apiCalls, runlog.Metadata{
		ProjectID:       project.ID,
		SetID:           set.ID,
		TranslatedItems: report.Translated,
		TotalItems:      report.Total,
		StartedAt:       report.StartedAt,
		FinishedAt:      report.FinishedAt,
		DurationSeconds: int64(report.FinishedAt.Sub(report.StartedAt).Seconds()),
	})
	if err != nil {
		r.logger.Error().Err(err).Int64("set_id", set.ID).Msg("write run log")
	} else {
		report.LogID = logID
		report.LogUUID = logUUID
	}

	r.progress.Write(project.ID, set.ID, report.Translated, report.Total, true, report.LogID)

	var totalTokens int64
	for _, call := range apiCalls {
		totalTokens += call.TokensUsed
	}
	if err := r.stats.Increment(finishCtx, totalTokens); err != nil {
		r.logger.Error().Err(err).Int64("set_id", set.ID).Msg("update usage counters")
	}
}

func errorRecordFromAPIError(err error) runlog.ErrorRecord {
	if apiErr, ok := openai.AsAPIError(err); ok {
		return runlog.ErrorRecord{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		}
	}
	return runlog.ErrorRecord{
		Code:    "application_error",
		Message: err.Error(),
	}
}
