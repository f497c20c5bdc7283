package scoring

import (
	"errors"
	"testing"

	"github.com/himanishpuri/SurfaceEval/internal/align"
	"github.com/himanishpuri/SurfaceEval/internal/expected"
	"github.com/himanishpuri/SurfaceEval/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaderError(t *testing.T) {
	got, err := FaderError([]float64{0.25, 0.80, 0.50}, []float64{0.25, 0.75, 0.50})
	require.NoError(t, err)
	assert.InDelta(t, 0.05, got, 1e-12)

	got, err = FaderError([]float64{3, 0}, []float64{0, 4})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got, 1e-12)
}

func TestPadError(t *testing.T) {
	got, err := PadError([]float64{0, 670, 1330}, []float64{0, 666.67, 1333.33})
	require.NoError(t, err)
	assert.InDelta(t, (3.33+3.33)/3, got, 1e-9)
}

func TestZeroIffIdentical(t *testing.T) {
	a := []float64{0.1, 0.2, 0.3}

	f, err := FaderError(a, a)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f)

	p, err := PadError(a, a)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)

	b := []float64{0.1, 0.2, 0.30001}
	f, err = FaderError(a, b)
	require.NoError(t, err)
	assert.Greater(t, f, 0.0)

	p, err = PadError(b, a)
	require.NoError(t, err)
	assert.Greater(t, p, 0.0)
}

func TestLengthMismatch(t *testing.T) {
	_, err := FaderError([]float64{1, 2}, []float64{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrLengthMismatch)

	_, err = PadError([]float64{1}, []float64{1, 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrLengthMismatch)

	var lm *models.LengthMismatchError
	require.True(t, errors.As(err, &lm))
	assert.Equal(t, 2, lm.Expected)
	assert.Equal(t, 1, lm.Actual)
}

func TestPadErrorEmpty(t *testing.T) {
	_, err := PadError(nil, nil)
	assert.ErrorIs(t, err, ErrEmptySeries)

	f, err := FaderError(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f)
}

func TestPadScenarioEndToEnd(t *testing.T) {
	schedule, err := expected.Pad(90, 8)
	require.NoError(t, err)

	raw := []float64{5, 660, 1340, 2005, 2670, 3330, 4000, 4670, 5330}
	samples := make([]models.LogSample, len(raw))
	for i, ts := range raw {
		samples[i] = models.LogSample{TimestampMs: ts, Values: []float64{1}}
	}

	presses := align.PadPresses(samples)
	require.Len(t, presses, 8)

	got, err := PadError(presses, schedule.PressTimesMs)
	require.NoError(t, err)
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 20.0)
}

func TestSummarize(t *testing.T) {
	st := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 8, st.Count)
	assert.InDelta(t, 5.0, st.Mean, 1e-12)
	assert.InDelta(t, 2.0, st.StdDev, 1e-12)
	assert.Equal(t, 2.0, st.Min)
	assert.Equal(t, 9.0, st.Max)

	assert.Equal(t, models.Stats{}, Summarize(nil))
}
