package scoring

import (
	"errors"
	"math"

	"github.com/himanishpuri/SurfaceEval/pkg/models"
)

// ErrEmptySeries is returned when a mean is requested over no values.
var ErrEmptySeries = errors.New("cannot score an empty series")

// FaderError returns the Euclidean distance between observed and expected.
func FaderError(observed, expected []float64) (float64, error) {
	if len(observed) != len(expected) {
		return 0, &models.LengthMismatchError{What: "fader samples", Expected: len(expected), Actual: len(observed)}
	}

	var sum float64
	for i := range observed {
		d := observed[i] - expected[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// PadError returns the mean absolute difference between detected and expected
// press times. Every expected beat needs exactly one detected press.
func PadError(observed, expected []float64) (float64, error) {
	if len(observed) != len(expected) {
		return 0, &models.LengthMismatchError{What: "pad presses", Expected: len(expected), Actual: len(observed)}
	}
	if len(observed) == 0 {
		return 0, ErrEmptySeries
	}

	var sum float64
	for i := range observed {
		sum += math.Abs(observed[i] - expected[i])
	}
	return sum / float64(len(observed)), nil
}

// Summarize computes count, mean, population standard deviation, min and max.
func Summarize(values []float64) models.Stats {
	if len(values) == 0 {
		return models.Stats{}
	}

	st := models.Stats{Count: len(values), Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		sum += v
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	st.Mean = sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - st.Mean
		sq += d * d
	}
	st.StdDev = math.Sqrt(sq / float64(len(values)))
	return st
}
