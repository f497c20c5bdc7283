package main

import (
	"fmt"
	"math"

	"github.com/himanishpuri/SurfaceEval/pkg/models"
	"github.com/himanishpuri/SurfaceEval/pkg/surfaceeval"
)

// EvaluateRequest is the request body for POST /api/evaluations.
// Log paths are resolved on the server.
type EvaluateRequest struct {
	Name     string   `json:"name,omitempty"`
	Device   string   `json:"device"`
	Signal   string   `json:"signal"`
	Template string   `json:"template,omitempty"`
	Paths    []string `json:"paths,omitempty"`
	Format   string   `json:"format,omitempty"`

	// Optional tempo overrides; server defaults apply when unset.
	BPM      *float64  `json:"bpm,omitempty"`
	NumBeats *int      `json:"num_beats,omitempty"`
	NumRuns  *int      `json:"num_runs,omitempty"`
	Pattern  []float64 `json:"pattern,omitempty"`
}

// Validate checks if the request is valid
func (r *EvaluateRequest) Validate() error {
	if _, err := models.ParseDeviceKind(r.Device); err != nil {
		return err
	}
	if _, err := models.ParseSignalKind(r.Signal); err != nil {
		return err
	}
	if r.Template == "" && len(r.Paths) == 0 {
		return fmt.Errorf("template or paths is required")
	}
	if r.BPM != nil && (math.IsNaN(*r.BPM) || *r.BPM <= 0) {
		return fmt.Errorf("bpm must be positive")
	}
	return nil
}

func (r *EvaluateRequest) Batch() surfaceeval.Batch {
	return surfaceeval.Batch{
		Name:     r.Name,
		Device:   models.DeviceKind(r.Device),
		Signal:   models.SignalKind(r.Signal),
		Template: r.Template,
		Paths:    r.Paths,
		Format:   r.Format,
	}
}

// overrides returns the options for the tempo fields set in the request.
func (r *EvaluateRequest) overrides() []surfaceeval.Option {
	var opts []surfaceeval.Option
	if r.BPM != nil {
		opts = append(opts, surfaceeval.WithBPM(*r.BPM))
	}
	if r.NumBeats != nil {
		opts = append(opts, surfaceeval.WithNumBeats(*r.NumBeats))
	}
	if r.NumRuns != nil {
		opts = append(opts, surfaceeval.WithNumRuns(*r.NumRuns))
	}
	if len(r.Pattern) > 0 {
		opts = append(opts, surfaceeval.WithPattern(r.Pattern))
	}
	return opts
}

// EvaluateResponse is the response for POST /api/evaluations. Errors lists
// per-run failures; the evaluation is stored either way.
type EvaluateResponse struct {
	Evaluation *surfaceeval.Summary `json:"evaluation"`
	Errors     []string             `json:"errors,omitempty"`
}

// ListEvaluationsResponse is the response for GET /api/evaluations
type ListEvaluationsResponse struct {
	Evaluations []surfaceeval.Summary `json:"evaluations"`
	Count       int                   `json:"count"`
}

// DeleteEvaluationResponse is the response for DELETE /api/evaluations/{id}
type DeleteEvaluationResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
