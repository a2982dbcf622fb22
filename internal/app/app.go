// Package app holds the session state shared by the CLI and the TUI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/pickwise/internal/generator"
	"github.com/verte-zerg/pickwise/internal/history"
	"github.com/verte-zerg/pickwise/internal/model"
	"github.com/verte-zerg/pickwise/internal/stats"
	"github.com/verte-zerg/pickwise/internal/store"
)

// ErrInvalidLength is returned for combination lengths other than 3, 4 or 5.
var ErrInvalidLength = model.ErrInvalidLength

// State is the in-memory session: the current history, the length used for
// the next parse, and the last analysis. Analysis is nil until the history
// has been analyzed at least once.
type State struct {
	Length   int
	History  []model.Combination
	Analysis *model.Analysis
}

// UploadResult summarizes an upload.
type UploadResult struct {
	Kept     int
	Dropped  int
	Analysis model.Analysis
}

// App ties the session state to persistence and pick generation.
type App struct {
	cfg    model.Config
	store  *store.Store
	gen    *generator.Generator
	logger *zap.Logger
	state  State
}

// ValidateLength checks that n is a supported combination length.
func ValidateLength(n int) error {
	return model.ValidateLength(n)
}

// New constructs an App with an empty history of cfg.Length.
func New(cfg model.Config, st *store.Store, gen *generator.Generator, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		cfg:    cfg,
		store:  st,
		gen:    gen,
		logger: logger,
		state:  State{Length: cfg.Length},
	}
}

// State returns the current session state.
func (a *App) State() State {
	return a.state
}

// Config returns the analyzer settings.
func (a *App) Config() model.Config {
	return a.cfg
}

// Restore loads the saved history and analyzes it. A missing or invalid
// snapshot leaves the history empty.
func (a *App) Restore(ctx context.Context) error {
	report, err := stats.BuildReport(ctx, a.store, a.state.Length, a.cfg.Window)
	if err != nil {
		return fmt.Errorf("failed to load saved history: %w", err)
	}
	if report.Invalid != nil {
		a.logger.Warn("ignoring saved history", zap.Error(report.Invalid))
		return nil
	}
	if !report.Saved {
		a.logger.Debug("no saved history")
		return nil
	}
	a.state.Length = report.Snapshot.Length
	a.state.History = report.Snapshot.Draws
	analysis := report.Analysis
	a.state.Analysis = &analysis
	a.logger.Info("restored history", zap.Int("draws", len(report.Snapshot.Draws)), zap.Int("length", report.Snapshot.Length))
	return nil
}

// Analysis returns the last analysis, or an empty one for the current length
// when nothing has been analyzed yet.
func (a *App) Analysis() model.Analysis {
	if a.state.Analysis != nil {
		return *a.state.Analysis
	}
	return stats.Analyze(nil, a.state.Length, a.cfg.Window)
}

// SetLength changes the length used by subsequent uploads. The current
// history and analysis are left untouched.
func (a *App) SetLength(n int) error {
	if err := ValidateLength(n); err != nil {
		return err
	}
	a.state.Length = n
	return nil
}

// Upload parses text with the current length, replaces the history, analyzes
// it and saves a snapshot.
func (a *App) Upload(ctx context.Context, text string) (UploadResult, error) {
	return a.replace(ctx, history.Parse(text, a.state.Length))
}

// UploadFile reads path and uploads its contents.
func (a *App) UploadFile(ctx context.Context, path string) (UploadResult, error) {
	res, err := history.LoadFile(path, a.state.Length)
	if err != nil {
		return UploadResult{}, err
	}
	a.logger.Debug("read history file", zap.String("path", path))
	return a.replace(ctx, res)
}

func (a *App) replace(ctx context.Context, res history.Result) (UploadResult, error) {
	a.state.History = res.Draws
	analysis := a.analyze()
	if res.Dropped > 0 {
		a.logger.Info("dropped malformed lines", zap.Int("dropped", res.Dropped), zap.Int("length", a.state.Length))
	}
	snap := model.Snapshot{Length: a.state.Length, Draws: res.Draws}
	if err := a.store.SaveSnapshot(ctx, snap); err != nil {
		return UploadResult{}, fmt.Errorf("failed to save history: %w", err)
	}
	a.logger.Info("history uploaded", zap.Int("draws", len(res.Draws)), zap.Int("length", a.state.Length))
	return UploadResult{Kept: len(res.Draws), Dropped: res.Dropped, Analysis: analysis}, nil
}

func (a *App) analyze() model.Analysis {
	analysis := stats.Analyze(a.state.History, a.state.Length, a.cfg.Window)
	a.state.Analysis = &analysis
	return analysis
}

// GeneratePicks draws a batch of picks from the current history and length,
// using the last analysis for the position predicate, and stores the batch.
func (a *App) GeneratePicks(ctx context.Context) ([]model.Pick, error) {
	var positionFreq []map[int]int
	if a.state.Analysis != nil {
		positionFreq = a.state.Analysis.PositionFreq
	}
	res := a.gen.Generate(a.state.History, a.state.Length, positionFreq, generator.Options{
		Count:       a.cfg.Picks,
		Window:      a.cfg.Window,
		MaxAttempts: a.cfg.MaxAttempts,
	})
	if res.Exhausted {
		fallbacks := 0
		for _, p := range res.Picks {
			if p.Fallback {
				fallbacks++
			}
		}
		a.logger.Warn("pick attempt cap reached; filled with unfiltered picks",
			zap.Int("max_attempts", a.cfg.MaxAttempts),
			zap.Int("fallbacks", fallbacks))
	}
	a.logger.Debug("generated picks", zap.Int("count", len(res.Picks)), zap.Int("attempts", res.Attempts))

	batch := model.PickBatch{
		CreatedAt: time.Now(),
		Length:    a.state.Length,
		Picks:     res.Picks,
	}
	if _, err := a.store.InsertPickBatch(ctx, batch); err != nil {
		return res.Picks, fmt.Errorf("failed to save picks: %w", err)
	}
	return res.Picks, nil
}

// PickHistory returns the last stored pick batches, oldest first.
func (a *App) PickHistory(ctx context.Context, last int) ([]model.PickBatch, error) {
	batches, err := a.store.ListPickBatches(ctx, last)
	if err != nil {
		return nil, fmt.Errorf("failed to load pick history: %w", err)
	}
	return batches, nil
}
