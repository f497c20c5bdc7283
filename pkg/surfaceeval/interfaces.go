package surfaceeval

import (
	"context"

	"github.com/himanishpuri/SurfaceEval/pkg/models"
)

// Evaluator scores batches of logged runs against the expected performance.
type Evaluator interface {
	Evaluate(ctx context.Context, batch Batch) (*Summary, error)
	GetEvaluation(id string) (*Summary, error)
	ListEvaluations() ([]Summary, error)
	RunSeries(id string, runIndex int) (*models.RunSeries, error)
	DeleteEvaluation(id string) error
	Close() error
}

type Storage interface {
	SaveEvaluation(summary *Summary, runs []models.RunSeries) (string, error)
	GetEvaluation(id string) (*Summary, error)
	ListEvaluations() ([]Summary, error)
	GetRunSeries(id string, runIndex int) (*models.RunSeries, error)
	DeleteEvaluation(id string) error
	Close() error
}

// Renderer receives the full report of every evaluation, e.g. to plot it.
type Renderer interface {
	Render(r *models.Report) error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
