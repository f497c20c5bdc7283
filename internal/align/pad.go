package align

import (
	"github.com/himanishpuri/SurfaceEval/pkg/models"
)

const (
	// PressMarker is the value of a press event; anything else is a release.
	PressMarker = 1.0

	// leadingArtifacts is the number of presses the capture device emits
	// before the performance starts. They are dropped before scoring.
	leadingArtifacts = 1
)

// PadPresses isolates genuine press events. It keeps samples whose first value
// is PressMarker, drops the first surviving press, and re-zero-bases the rest
// so the first genuine press is at 0.
func PadPresses(samples []models.LogSample) []float64 {
	var presses []float64
	for _, s := range samples {
		if len(s.Values) > 0 && s.Values[0] == PressMarker {
			presses = append(presses, s.TimestampMs)
		}
	}

	if len(presses) <= leadingArtifacts {
		return []float64{}
	}
	presses = presses[leadingArtifacts:]

	lo := presses[0]
	for _, t := range presses[1:] {
		if t < lo {
			lo = t
		}
	}
	out := make([]float64, len(presses))
	for i, t := range presses {
		out[i] = t - lo
	}
	return out
}
