package surfaceeval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML form of an evaluation setup:
//
//	bpm: 90
//	num_beats: 8
//	pattern: [0.25, 0.75, 0.5, 1.0]
//	num_runs: 10
//	report_dir: plots
//	batches:
//	  - name: touchosc_slider
//	    device: touch-surface
//	    signal: fader
//	    template: logs/touchosc_slider_{}.log
//
// Unset tempo fields keep their defaults.
type FileConfig struct {
	BPM           *float64  `yaml:"bpm,omitempty"`
	NumBeats      *int      `yaml:"num_beats,omitempty"`
	Pattern       []float64 `yaml:"pattern,omitempty"`
	NumRuns       *int      `yaml:"num_runs,omitempty"`
	Discriminator string    `yaml:"discriminator,omitempty"`
	DBPath        string    `yaml:"db_path,omitempty"`
	ReportDir     string    `yaml:"report_dir,omitempty"`
	Batches       []Batch   `yaml:"batches"`
}

// LoadFile reads and decodes a YAML evaluation setup.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &fc, nil
}

// Options converts the set fields into evaluator options.
func (fc *FileConfig) Options() []Option {
	var opts []Option
	if fc.BPM != nil {
		opts = append(opts, WithBPM(*fc.BPM))
	}
	if fc.NumBeats != nil {
		opts = append(opts, WithNumBeats(*fc.NumBeats))
	}
	if len(fc.Pattern) > 0 {
		opts = append(opts, WithPattern(fc.Pattern))
	}
	if fc.NumRuns != nil {
		opts = append(opts, WithNumRuns(*fc.NumRuns))
	}
	if fc.Discriminator != "" {
		opts = append(opts, WithDiscriminator(fc.Discriminator))
	}
	if fc.DBPath != "" {
		opts = append(opts, WithDBPath(fc.DBPath))
	}
	return opts
}
