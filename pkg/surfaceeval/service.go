package surfaceeval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/himanishpuri/SurfaceEval/internal/align"
	"github.com/himanishpuri/SurfaceEval/internal/eventlog"
	"github.com/himanishpuri/SurfaceEval/internal/expected"
	"github.com/himanishpuri/SurfaceEval/internal/scoring"
	"github.com/himanishpuri/SurfaceEval/pkg/logger"
	"github.com/himanishpuri/SurfaceEval/pkg/models"
	"github.com/himanishpuri/SurfaceEval/pkg/utils"
	"go.uber.org/multierr"
)

// evaluator is the default implementation of the Evaluator interface.
type evaluator struct {
	storage  Storage
	renderer Renderer
	log      Logger
	config   *Config
	now      func() time.Time
}

func NewEvaluator(opts ...Option) (Evaluator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Set default logger if none provided
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	// Create or use provided storage
	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &evaluator{
		storage:  stor,
		renderer: cfg.Renderer,
		log:      cfg.Logger,
		config:   cfg,
		now:      time.Now,
	}, nil
}

// plan is a validated batch with its expected signal generated once.
type plan struct {
	batch    Batch
	paths    []string
	parse    eventlog.ParseOptions
	timeline models.FaderTimeline
	schedule models.PadSchedule
	expected models.Series
}

func (e *evaluator) newPlan(batch Batch) (*plan, error) {
	if _, err := models.ParseDeviceKind(string(batch.Device)); err != nil {
		return nil, err
	}
	if _, err := models.ParseSignalKind(string(batch.Signal)); err != nil {
		return nil, err
	}
	format, err := eventlog.ParseFormat(batch.Format)
	if err != nil {
		return nil, &models.ConfigurationError{Field: "format", Reason: err.Error()}
	}

	p := &plan{
		batch: batch,
		parse: eventlog.ParseOptions{Format: format, Discriminator: e.config.Discriminator},
	}

	switch {
	case len(batch.Paths) > 0:
		p.paths = batch.Paths
	case batch.Template != "":
		p.paths, err = utils.RunPaths(batch.Template, e.config.NumRuns)
		if err != nil {
			return nil, &models.ConfigurationError{Field: "template", Reason: err.Error()}
		}
	default:
		return nil, &models.ConfigurationError{Field: "paths", Reason: "batch needs a template or explicit paths"}
	}

	switch batch.Signal {
	case models.SignalFader:
		p.timeline, err = expected.Fader(e.config.BPM, e.config.Pattern)
		if err != nil {
			return nil, err
		}
		p.expected = expected.FaderSeries(p.timeline)
	case models.SignalPad:
		p.schedule, err = expected.Pad(e.config.BPM, e.config.NumBeats)
		if err != nil {
			return nil, err
		}
		p.expected = expected.PadSeries(p.schedule)
	}
	return p, nil
}

// Evaluate scores every run of batch in run order. A missing log file fails
// the batch before any run is read. Runs that cannot be parsed or scored are
// recorded as failures; the returned error then combines all of them and
// the summary carries no mean. The summary is persisted in both cases.
func (e *evaluator) Evaluate(ctx context.Context, batch Batch) (*Summary, error) {
	p, err := e.newPlan(batch)
	if err != nil {
		return nil, err
	}

	for i, path := range p.paths {
		ok, err := utils.FileExists(path)
		if err != nil {
			return nil, fmt.Errorf("checking run %d: %w", i, err)
		}
		if !ok {
			return nil, &models.MissingLogFileError{Path: path, RunIndex: i}
		}
	}

	e.log.Infof("Evaluating %s/%s over %d runs", batch.Device, batch.Signal, len(p.paths))

	summary := &Summary{
		Name:      batch.Name,
		Device:    batch.Device,
		Signal:    batch.Signal,
		BPM:       e.config.BPM,
		NumBeats:  e.config.NumBeats,
		Pattern:   append([]float64(nil), e.config.Pattern...),
		NumRuns:   len(p.paths),
		CreatedAt: e.now().UTC(),
	}
	runs := make([]models.RunSeries, 0, len(p.paths))

	var errs error
	values := make([]float64, 0, len(p.paths))
	for i, path := range p.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		run, score, err := e.evaluateRun(p, i, path)
		runs = append(runs, run)
		if err != nil {
			e.log.Warnf("Run %d failed: %v", i, err)
			summary.Failures = append(summary.Failures, models.RunFailure{RunIndex: i, Path: path, Message: err.Error()})
			errs = multierr.Append(errs, fmt.Errorf("run %d: %w", i, err))
			continue
		}

		e.log.Debugf("Run %d: error %.4f", i, score.Value)
		summary.Scores = append(summary.Scores, score)
		values = append(values, score.Value)
	}

	summary.Complete = errs == nil
	if summary.Complete {
		summary.Stats = scoring.Summarize(values)
		summary.MeanError = summary.Stats.Mean
		e.log.Infof("Mean error over %d runs: %.4f", len(values), summary.MeanError)
	}

	id, err := e.storage.SaveEvaluation(summary, runs)
	if err != nil {
		return nil, multierr.Append(errs, fmt.Errorf("failed to store evaluation: %w", err))
	}
	summary.ID = id

	if e.renderer != nil {
		if err := e.renderer.Render(e.report(p, summary, runs)); err != nil {
			e.log.Warnf("Rendering evaluation %s failed: %v", id, err)
		}
	}

	return summary, errs
}

func (e *evaluator) evaluateRun(p *plan, index int, path string) (models.RunSeries, models.ErrorScore, error) {
	run := models.RunSeries{RunIndex: index, Path: path, Failed: true}
	score := models.ErrorScore{RunIndex: index, Signal: p.batch.Signal}

	samples, err := eventlog.ParseFile(path, p.parse)
	if err != nil {
		var missing *models.MissingLogFileError
		if errors.As(err, &missing) {
			missing.RunIndex = index
		}
		return run, score, err
	}

	switch p.batch.Signal {
	case models.SignalFader:
		if len(samples) == 0 {
			return run, score, &models.LengthMismatchError{What: "fader samples in " + path, Expected: 1, Actual: 0}
		}
		observed, levels := align.FaderSamples(samples, p.timeline)
		run.Observed = align.FaderSeries(samples)
		run.Expected = levels
		score.Value, err = scoring.FaderError(observed, levels)
	case models.SignalPad:
		presses := align.PadPresses(samples)
		run.Observed = models.Series{TimestampsMs: presses, Values: ones(len(presses))}
		run.Expected = append([]float64(nil), p.schedule.PressTimesMs...)
		score.Value, err = scoring.PadError(presses, p.schedule.PressTimesMs)
	}
	if err != nil {
		return run, score, err
	}

	run.Score = score.Value
	run.Failed = false
	return run, score, nil
}

func (e *evaluator) report(p *plan, s *Summary, runs []models.RunSeries) *models.Report {
	return &models.Report{
		ID:        s.ID,
		Name:      s.Name,
		Device:    s.Device,
		Signal:    s.Signal,
		BPM:       s.BPM,
		NumBeats:  s.NumBeats,
		Pattern:   s.Pattern,
		Expected:  p.expected,
		Runs:      runs,
		Complete:  s.Complete,
		MeanError: s.MeanError,
		Stats:     s.Stats,
		Failures:  s.Failures,
	}
}

func (e *evaluator) GetEvaluation(id string) (*Summary, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &models.ConfigurationError{Field: "id", Reason: "must not be empty"}
	}
	return e.storage.GetEvaluation(id)
}

func (e *evaluator) ListEvaluations() ([]Summary, error) {
	return e.storage.ListEvaluations()
}

// RunSeries returns the stored observed and expected values of one run.
func (e *evaluator) RunSeries(id string, runIndex int) (*models.RunSeries, error) {
	if runIndex < 0 {
		return nil, &models.ConfigurationError{Field: "run_index", Reason: fmt.Sprintf("must not be negative, got %d", runIndex)}
	}
	return e.storage.GetRunSeries(id, runIndex)
}

func (e *evaluator) DeleteEvaluation(id string) error {
	e.log.Infof("Deleting evaluation %s", id)
	return e.storage.DeleteEvaluation(id)
}

func (e *evaluator) Close() error {
	return e.storage.Close()
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
