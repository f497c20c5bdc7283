package expected

import (
	"math"
	"testing"

	"github.com/himanishpuri/SurfaceEval/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaderScenario90BPM(t *testing.T) {
	timeline, err := Fader(90, DefaultPattern())
	require.NoError(t, err)

	wantTimes := []float64{0, 2666.67, 2666.67, 5333.33, 5333.33, 8000, 8000, 10666.67, 10666.67}
	wantLevels := []float64{0.25, 0.25, 0.75, 0.75, 0.50, 0.50, 1.0, 1.0, 0}

	assert.InDeltaSlice(t, wantTimes, timeline.Times(), 0.01)
	assert.Equal(t, wantLevels, timeline.Levels())
}

func TestFaderProperties(t *testing.T) {
	for _, bpm := range []float64{1, 33.3, 60, 90, 120, 177, 240, 999.9} {
		timeline, err := Fader(bpm, DefaultPattern())
		require.NoError(t, err)

		times := timeline.Times()
		for i := 1; i < len(times); i++ {
			assert.LessOrEqual(t, times[i-1], times[i], "bpm=%v breakpoint %d", bpm, i)
		}
		assert.Equal(t, 0.0, timeline[len(timeline)-1].Level, "bpm=%v", bpm)
		assert.Equal(t, times[1], times[2], "shared bar boundary must be identical, bpm=%v", bpm)
	}
}

func TestFaderIsDeterministic(t *testing.T) {
	a, err := Fader(97.5, []float64{0.1, 0.9, 0.3})
	require.NoError(t, err)
	b, err := Fader(97.5, []float64{0.1, 0.9, 0.3})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 7)
}

func TestPadScenario90BPM(t *testing.T) {
	schedule, err := Pad(90, 8)
	require.NoError(t, err)

	require.Len(t, schedule.PressTimesMs, 8)
	assert.Equal(t, 0.0, schedule.PressTimesMs[0])
	assert.InDelta(t, 666.67, schedule.PressTimesMs[1], 0.01)
	assert.InDelta(t, 1333.33, schedule.PressTimesMs[2], 0.01)
	assert.InDelta(t, 4666.67, schedule.PressTimesMs[7], 0.01)
	for _, v := range schedule.Values {
		assert.Equal(t, 1.0, v)
	}
}

func TestPadSpacing(t *testing.T) {
	for _, bpm := range []float64{45, 90, 128} {
		for _, beats := range []int{1, 2, 8, 33} {
			schedule, err := Pad(bpm, beats)
			require.NoError(t, err)
			require.Len(t, schedule.PressTimesMs, beats)
			assert.Equal(t, 0.0, schedule.PressTimesMs[0])
			for i := 1; i < beats; i++ {
				gap := schedule.PressTimesMs[i] - schedule.PressTimesMs[i-1]
				assert.InDelta(t, 60000/bpm, gap, 1e-9)
			}
		}
	}
}

func TestInvalidConfiguration(t *testing.T) {
	_, err := Fader(0, DefaultPattern())
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = Fader(-90, DefaultPattern())
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = Fader(math.NaN(), DefaultPattern())
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = Fader(90, nil)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = Pad(90, 0)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = Pad(math.Inf(1), 8)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestDefaultPatternIsACopy(t *testing.T) {
	p := DefaultPattern()
	p[0] = 42
	assert.Equal(t, 0.25, DefaultPattern()[0])
}

func TestSeries(t *testing.T) {
	timeline, err := Fader(120, []float64{0.5})
	require.NoError(t, err)
	s := FaderSeries(timeline)
	assert.Equal(t, []float64{0, 2000, 2000}, s.TimestampsMs)
	assert.Equal(t, []float64{0.5, 0.5, 0}, s.Values)

	schedule, err := Pad(120, 3)
	require.NoError(t, err)
	ps := PadSeries(schedule)
	assert.Equal(t, []float64{0, 500, 1000}, ps.TimestampsMs)
	ps.TimestampsMs[0] = 9
	assert.Equal(t, 0.0, schedule.PressTimesMs[0])
}
