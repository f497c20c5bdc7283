package surfaceeval

import (
	"fmt"
	"math"
	"strings"

	"github.com/himanishpuri/SurfaceEval/internal/eventlog"
	"github.com/himanishpuri/SurfaceEval/internal/expected"
	"github.com/himanishpuri/SurfaceEval/pkg/models"
)

// Config holds the tempo of the expected performance and the collaborators of
// an Evaluator. It is read-only once the Evaluator is built.
type Config struct {
	BPM           float64
	NumBeats      int
	Pattern       []float64
	NumRuns       int
	Discriminator string
	DBPath        string
	Logger        Logger
	Storage       Storage
	Renderer      Renderer
}

type Option func(*Config)

func WithBPM(bpm float64) Option {
	return func(c *Config) {
		c.BPM = bpm
	}
}

func WithNumBeats(n int) Option {
	return func(c *Config) {
		c.NumBeats = n
	}
}

// WithPattern sets the fader levels, one per bar.
func WithPattern(levels []float64) Option {
	return func(c *Config) {
		c.Pattern = append([]float64(nil), levels...)
	}
}

// WithNumRuns sets how many runs a path template expands to.
func WithNumRuns(n int) Option {
	return func(c *Config) {
		c.NumRuns = n
	}
}

// WithDiscriminator sets the tag that marks pad lines in discriminated logs.
func WithDiscriminator(tag string) Option {
	return func(c *Config) {
		c.Discriminator = tag
	}
}

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func WithRenderer(r Renderer) Option {
	return func(c *Config) {
		c.Renderer = r
	}
}

func defaultConfig() *Config {
	return &Config{
		BPM:           90,
		NumBeats:      8,
		Pattern:       expected.DefaultPattern(),
		NumRuns:       10,
		Discriminator: eventlog.DefaultDiscriminator,
		DBPath:        "surfaceeval.sqlite3",
	}
}

// Validate checks the tempo settings. Collaborators are not checked.
func (c *Config) Validate() error {
	if math.IsNaN(c.BPM) || math.IsInf(c.BPM, 0) || c.BPM <= 0 {
		return &models.ConfigurationError{Field: "bpm", Reason: fmt.Sprintf("must be a positive finite number, got %v", c.BPM)}
	}
	if c.NumBeats < 1 {
		return &models.ConfigurationError{Field: "num_beats", Reason: fmt.Sprintf("must be at least 1, got %d", c.NumBeats)}
	}
	if len(c.Pattern) == 0 {
		return &models.ConfigurationError{Field: "pattern", Reason: "must contain at least one level"}
	}
	for i, v := range c.Pattern {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &models.ConfigurationError{Field: "pattern", Reason: fmt.Sprintf("level %d is not finite", i)}
		}
	}
	if c.NumRuns < 1 {
		return &models.ConfigurationError{Field: "num_runs", Reason: fmt.Sprintf("must be at least 1, got %d", c.NumRuns)}
	}
	if strings.TrimSpace(c.Discriminator) == "" {
		return &models.ConfigurationError{Field: "discriminator", Reason: "must not be empty"}
	}
	return nil
}
