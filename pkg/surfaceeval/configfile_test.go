package surfaceeval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/SurfaceEval/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const setupYAML = `
bpm: 120
pattern: [0.1, 0.9]
num_runs: 3
report_dir: plots
batches:
  - name: touchosc_slider
    device: touch-surface
    signal: fader
    template: logs/touchosc_slider_{}.log
  - name: oscxr_pad
    device: motion-surface
    signal: pad
    format: discriminated
    paths: [logs/oscxr_0.log, logs/oscxr_1.log]
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(setupYAML), 0o644))

	fc, err := LoadFile(path)
	require.NoError(t, err)

	require.NotNil(t, fc.BPM)
	assert.Equal(t, 120.0, *fc.BPM)
	assert.Nil(t, fc.NumBeats)
	assert.Equal(t, "plots", fc.ReportDir)
	require.Len(t, fc.Batches, 2)
	assert.Equal(t, models.TouchSurface, fc.Batches[0].Device)
	assert.Equal(t, "logs/touchosc_slider_{}.log", fc.Batches[0].Template)
	assert.Equal(t, "discriminated", fc.Batches[1].Format)
	assert.Len(t, fc.Batches[1].Paths, 2)

	cfg := defaultConfig()
	for _, opt := range fc.Options() {
		opt(cfg)
	}
	assert.Equal(t, 120.0, cfg.BPM)
	assert.Equal(t, 8, cfg.NumBeats, "unset fields keep defaults")
	assert.Equal(t, []float64{0.1, 0.9}, cfg.Pattern)
	assert.Equal(t, 3, cfg.NumRuns)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bpm: [not, a, number\n"), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 90.0, cfg.BPM)
	assert.Equal(t, []float64{0.25, 0.75, 0.5, 1.0}, cfg.Pattern)
	assert.Equal(t, "pad", cfg.Discriminator)
}
