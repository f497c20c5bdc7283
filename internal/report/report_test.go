package report

import (
	"encoding/json"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/SurfaceEval/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func faderReport() *models.Report {
	return &models.Report{
		Device: models.TouchSurface,
		Signal: models.SignalFader,
		BPM:    90,
		Expected: models.Series{
			TimestampsMs: []float64{0, 2666.67, 2666.67, 5333.33, 5333.33},
			Values:       []float64{0.25, 0.25, 0.75, 0.75, 0},
		},
		Runs: []models.RunSeries{
			{RunIndex: 0, Observed: models.Series{TimestampsMs: []float64{0, 1000, 3000}, Values: []float64{0.2, 0.3, 0.7}}, Score: 0.1},
			{RunIndex: 1, Observed: models.Series{TimestampsMs: []float64{0}, Values: []float64{0.25}}, Failed: true},
		},
		Complete:  true,
		MeanError: 0.1,
	}
}

func padReport() *models.Report {
	return &models.Report{
		Name:     "motion pad",
		Device:   models.MotionSurface,
		Signal:   models.SignalPad,
		Expected: models.Series{TimestampsMs: []float64{0, 666.67, 1333.33}, Values: []float64{1, 1, 1}},
		Runs: []models.RunSeries{
			{RunIndex: 0, Observed: models.Series{TimestampsMs: []float64{0, 670, 1330}, Values: []float64{1, 1, 1}}},
		},
	}
}

func TestFileStem(t *testing.T) {
	assert.Equal(t, "touch-surface_fader", FileStem(faderReport()))
	assert.Equal(t, "motion_pad", FileStem(padReport()))
}

func TestPNGRenderer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	r := NewPNGRenderer(dir)

	for _, rep := range []*models.Report{faderReport(), padReport()} {
		require.NoError(t, r.Render(rep))

		f, err := os.Open(r.Path(rep))
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)

		assert.Equal(t, DefaultWidth, img.Bounds().Dx())
		assert.Equal(t, DefaultHeight, img.Bounds().Dy())
	}
}

func TestJSONRenderer(t *testing.T) {
	dir := t.TempDir()
	r := NewJSONRenderer(dir)
	rep := faderReport()

	require.NoError(t, r.Render(rep))

	data, err := os.ReadFile(r.Path(rep))
	require.NoError(t, err)

	var back models.Report
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, rep.Device, back.Device)
	require.Len(t, back.Runs, 2)
	assert.Equal(t, rep.Runs[0].Observed, back.Runs[0].Observed)
}

type failingRenderer struct{ err error }

func (f failingRenderer) Render(*models.Report) error { return f.err }

func TestMultiCollectsErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")

	err := Multi{failingRenderer{errA}, Nop{}, failingRenderer{errB}}.Render(padReport())
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	assert.NoError(t, Multi{Nop{}}.Render(padReport()))
}
