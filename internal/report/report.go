package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/himanishpuri/SurfaceEval/pkg/models"
	"github.com/himanishpuri/SurfaceEval/pkg/utils"
	"go.uber.org/multierr"
)

// Renderer turns an evaluation report into an artifact.
type Renderer interface {
	Render(r *models.Report) error
}

// FileStem names artifacts after the report, e.g. "touch-surface_fader".
func FileStem(r *models.Report) string {
	stem := r.Name
	if stem == "" {
		stem = string(r.Device) + "_" + string(r.Signal)
	}
	stem = strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			return c
		default:
			return '_'
		}
	}, stem)
	return stem
}

// JSONRenderer writes the report, series included, as indented JSON.
type JSONRenderer struct {
	Dir string
}

func NewJSONRenderer(dir string) *JSONRenderer {
	return &JSONRenderer{Dir: dir}
}

func (j *JSONRenderer) Path(r *models.Report) string {
	return filepath.Join(j.Dir, FileStem(r)+"_eval.json")
}

func (j *JSONRenderer) Render(r *models.Report) error {
	if err := utils.MakeDir(j.Dir); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(j.Path(r), data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// Multi renders with every renderer and returns all of their errors.
type Multi []Renderer

func (m Multi) Render(r *models.Report) error {
	var errs error
	for _, rr := range m {
		errs = multierr.Append(errs, rr.Render(r))
	}
	return errs
}

// Nop discards reports.
type Nop struct{}

func (Nop) Render(*models.Report) error { return nil }
