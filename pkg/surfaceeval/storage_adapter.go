package surfaceeval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/himanishpuri/SurfaceEval/internal/storage"
	"github.com/himanishpuri/SurfaceEval/pkg/models"
)

// ErrNotFound is returned for unknown evaluation IDs and run indexes.
var ErrNotFound = storage.ErrNotFound

// storageAdapter adapts the storage.DBClient to implement the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) SaveEvaluation(summary *Summary, runs []models.RunSeries) (string, error) {
	eval := &storage.Evaluation{
		ID:        summary.ID,
		Name:      summary.Name,
		Device:    string(summary.Device),
		Signal:    string(summary.Signal),
		BPM:       summary.BPM,
		NumBeats:  summary.NumBeats,
		Pattern:   encodePattern(summary.Pattern),
		NumRuns:   summary.NumRuns,
		Complete:  summary.Complete,
		MeanError: summary.MeanError,
		StdDev:    summary.Stats.StdDev,
		MinError:  summary.Stats.Min,
		MaxError:  summary.Stats.Max,
		CreatedAt: summary.CreatedAt,
	}

	failed := make(map[int]string, len(summary.Failures))
	for _, f := range summary.Failures {
		failed[f.RunIndex] = f.Message
	}

	var points []storage.SeriesPoint
	for _, run := range runs {
		eval.Runs = append(eval.Runs, storage.RunScore{
			RunIndex: run.RunIndex,
			Path:     run.Path,
			Value:    run.Score,
			Failure:  failed[run.RunIndex],
		})
		for j, t := range run.Observed.TimestampsMs {
			p := storage.SeriesPoint{
				RunIndex:    run.RunIndex,
				Seq:         j,
				TimestampMs: t,
				Observed:    run.Observed.Values[j],
			}
			if j < len(run.Expected) {
				p.Expected = run.Expected[j]
			}
			points = append(points, p)
		}
	}

	return s.db.SaveEvaluation(eval, points)
}

func (s *storageAdapter) GetEvaluation(id string) (*Summary, error) {
	eval, err := s.db.GetEvaluation(id)
	if err != nil {
		return nil, err
	}
	summary, err := toSummary(eval)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *storageAdapter) ListEvaluations() ([]Summary, error) {
	evals, err := s.db.ListEvaluations()
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(evals))
	for i := range evals {
		summary, err := toSummary(&evals[i])
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *storageAdapter) GetRunSeries(id string, runIndex int) (*models.RunSeries, error) {
	eval, err := s.db.GetEvaluation(id)
	if err != nil {
		return nil, err
	}

	var run *storage.RunScore
	for i := range eval.Runs {
		if eval.Runs[i].RunIndex == runIndex {
			run = &eval.Runs[i]
			break
		}
	}
	if run == nil {
		return nil, fmt.Errorf("run %d of evaluation %s: %w", runIndex, id, ErrNotFound)
	}

	points, err := s.db.GetSeries(id, runIndex)
	if err != nil {
		return nil, err
	}

	rs := &models.RunSeries{
		RunIndex: run.RunIndex,
		Path:     run.Path,
		Score:    run.Value,
		Failed:   run.Failure != "",
		Observed: models.Series{
			TimestampsMs: make([]float64, len(points)),
			Values:       make([]float64, len(points)),
		},
		Expected: make([]float64, len(points)),
	}
	for i, p := range points {
		rs.Observed.TimestampsMs[i] = p.TimestampMs
		rs.Observed.Values[i] = p.Observed
		rs.Expected[i] = p.Expected
	}
	return rs, nil
}

func (s *storageAdapter) DeleteEvaluation(id string) error {
	return s.db.DeleteEvaluation(id)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

func toSummary(eval *storage.Evaluation) (Summary, error) {
	pattern, err := decodePattern(eval.Pattern)
	if err != nil {
		return Summary{}, fmt.Errorf("evaluation %s: %w", eval.ID, err)
	}

	summary := Summary{
		ID:        eval.ID,
		Name:      eval.Name,
		Device:    models.DeviceKind(eval.Device),
		Signal:    models.SignalKind(eval.Signal),
		BPM:       eval.BPM,
		NumBeats:  eval.NumBeats,
		Pattern:   pattern,
		NumRuns:   eval.NumRuns,
		Complete:  eval.Complete,
		MeanError: eval.MeanError,
		CreatedAt: eval.CreatedAt,
	}

	for _, run := range eval.Runs {
		if run.Failure != "" {
			summary.Failures = append(summary.Failures, models.RunFailure{
				RunIndex: run.RunIndex,
				Path:     run.Path,
				Message:  run.Failure,
			})
			continue
		}
		summary.Scores = append(summary.Scores, models.ErrorScore{
			RunIndex: run.RunIndex,
			Signal:   summary.Signal,
			Value:    run.Value,
		})
	}

	if eval.Complete {
		summary.Stats = models.Stats{
			Count:  eval.NumRuns,
			Mean:   eval.MeanError,
			StdDev: eval.StdDev,
			Min:    eval.MinError,
			Max:    eval.MaxError,
		}
	}
	return summary, nil
}

func encodePattern(levels []float64) string {
	parts := make([]string, len(levels))
	for i, v := range levels {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func decodePattern(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	levels := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("decoding pattern: %w", err)
		}
		levels[i] = v
	}
	return levels, nil
}
