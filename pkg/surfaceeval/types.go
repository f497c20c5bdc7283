package surfaceeval

import (
	"time"

	"github.com/himanishpuri/SurfaceEval/pkg/models"
)

// Batch names the log files of one device/signal combination.
type Batch struct {
	Name   string            `json:"name" yaml:"name"`
	Device models.DeviceKind `json:"device" yaml:"device"`
	Signal models.SignalKind `json:"signal" yaml:"signal"`

	// Template is a path with "{}" in place of the run index, expanded for
	// runs 0..NumRuns-1. Ignored when Paths is set.
	Template string   `json:"template,omitempty" yaml:"template,omitempty"`
	Paths    []string `json:"paths,omitempty" yaml:"paths,omitempty"`

	// Format is "values" (default) or "discriminated".
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Summary is the stored outcome of one evaluation.
type Summary struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Device    models.DeviceKind   `json:"device"`
	Signal    models.SignalKind   `json:"signal"`
	BPM       float64             `json:"bpm"`
	NumBeats  int                 `json:"num_beats"`
	Pattern   []float64           `json:"pattern"`
	NumRuns   int                 `json:"num_runs"`
	Complete  bool                `json:"complete"`
	MeanError float64             `json:"mean_error"`
	Stats     models.Stats        `json:"stats"`
	Scores    []models.ErrorScore `json:"scores,omitempty"`
	Failures  []models.RunFailure `json:"failures,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}
