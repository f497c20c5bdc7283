package expected

import (
	"fmt"
	"math"

	"github.com/himanishpuri/SurfaceEval/pkg/models"
)

// BeatsPerBar is the number of beats in one bar.
const BeatsPerBar = 4

// DefaultPattern returns the fader levels played bar by bar.
func DefaultPattern() []float64 {
	return []float64{0.25, 0.75, 0.50, 1.0}
}

// MsPerBeat returns the beat duration in milliseconds.
func MsPerBeat(bpm float64) float64 {
	return 60000 / bpm
}

func validateBPM(bpm float64) error {
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 {
		return &models.ConfigurationError{Field: "bpm", Reason: fmt.Sprintf("must be a positive finite number, got %v", bpm)}
	}
	return nil
}

// Fader builds the expected fader step function. Each pattern level spans one
// bar and is emitted as two breakpoints (bar start, bar end); a trailing
// breakpoint with level 0 closes the pattern.
func Fader(bpm float64, pattern []float64) (models.FaderTimeline, error) {
	if err := validateBPM(bpm); err != nil {
		return nil, err
	}
	if len(pattern) == 0 {
		return nil, &models.ConfigurationError{Field: "pattern", Reason: "must contain at least one level"}
	}

	bar := MsPerBeat(bpm) * BeatsPerBar
	timeline := make(models.FaderTimeline, 0, 2*len(pattern)+1)
	for i, v := range pattern {
		// bar*(i+1) rather than bar*i+bar keeps shared breakpoints bit-identical
		timeline = append(timeline,
			models.Breakpoint{TimeMs: bar * float64(i), Level: v},
			models.Breakpoint{TimeMs: bar * float64(i+1), Level: v},
		)
	}
	timeline = append(timeline, models.Breakpoint{TimeMs: bar * float64(len(pattern)), Level: 0})

	return timeline, nil
}

// Pad builds the expected press schedule: one press per beat starting at 0.
func Pad(bpm float64, numBeats int) (models.PadSchedule, error) {
	if err := validateBPM(bpm); err != nil {
		return models.PadSchedule{}, err
	}
	if numBeats < 1 {
		return models.PadSchedule{}, &models.ConfigurationError{Field: "num_beats", Reason: fmt.Sprintf("must be at least 1, got %d", numBeats)}
	}

	mspb := MsPerBeat(bpm)
	schedule := models.PadSchedule{
		PressTimesMs: make([]float64, numBeats),
		Values:       make([]float64, numBeats),
	}
	for i := 0; i < numBeats; i++ {
		schedule.PressTimesMs[i] = mspb * float64(i)
		schedule.Values[i] = 1
	}
	return schedule, nil
}

// FaderSeries returns the timeline as a plottable series.
func FaderSeries(timeline models.FaderTimeline) models.Series {
	return models.Series{TimestampsMs: timeline.Times(), Values: timeline.Levels()}
}

// PadSeries returns the schedule as a plottable series.
func PadSeries(schedule models.PadSchedule) models.Series {
	return models.Series{
		TimestampsMs: append([]float64(nil), schedule.PressTimesMs...),
		Values:       append([]float64(nil), schedule.Values...),
	}
}
