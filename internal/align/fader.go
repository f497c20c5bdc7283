package align

import (
	"github.com/himanishpuri/SurfaceEval/pkg/models"
)

// Fader assigns each observed timestamp the expected level of the bar it falls
// into: the level of the last breakpoint whose time is <= t.
//
// The scan keeps a single cursor that only moves forward, so timestampsMs must
// be non-decreasing. Out-of-order input is not detected and yields undefined
// (but in-range) levels.
func Fader(timestampsMs []float64, timeline models.FaderTimeline) []float64 {
	levels := make([]float64, len(timestampsMs))
	if len(timeline) == 0 {
		return levels
	}

	cursor := 0
	for i, t := range timestampsMs {
		for cursor+1 < len(timeline) && t >= timeline[cursor+1].TimeMs {
			cursor++
		}
		levels[i] = timeline[cursor].Level
	}
	return levels
}

// FaderSamples aligns parsed fader samples against timeline. It returns the
// observed first-channel values and the expected level for each of them.
// Samples without values are skipped.
func FaderSamples(samples []models.LogSample, timeline models.FaderTimeline) (observed, expected []float64) {
	samples = withValues(samples)
	ts := make([]float64, len(samples))
	observed = make([]float64, len(samples))
	for i, s := range samples {
		ts[i] = s.TimestampMs
		observed[i] = s.Values[0]
	}
	return observed, Fader(ts, timeline)
}

// FaderSeries returns the observed fader values as a plottable series,
// skipping samples without values.
func FaderSeries(samples []models.LogSample) models.Series {
	samples = withValues(samples)
	s := models.Series{
		TimestampsMs: make([]float64, len(samples)),
		Values:       make([]float64, len(samples)),
	}
	for i, sample := range samples {
		s.TimestampsMs[i] = sample.TimestampMs
		s.Values[i] = sample.Values[0]
	}
	return s
}

func withValues(samples []models.LogSample) []models.LogSample {
	for i, s := range samples {
		if len(s.Values) > 0 {
			continue
		}
		kept := append(make([]models.LogSample, 0, len(samples)-1), samples[:i]...)
		for _, rest := range samples[i+1:] {
			if len(rest.Values) > 0 {
				kept = append(kept, rest)
			}
		}
		return kept
	}
	return samples
}
