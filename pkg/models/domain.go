package models

import "fmt"

// LogSample is one parsed log line.
// TimestampMs is relative to the earliest sample of the run.
type LogSample struct {
	TimestampMs float64
	Values      []float64
}

// Breakpoint marks where the expected fader level changes.
type Breakpoint struct {
	TimeMs float64
	Level  float64
}

// FaderTimeline is a step function: Level[i] holds on [TimeMs[i], TimeMs[i+1]).
type FaderTimeline []Breakpoint

// Times returns the breakpoint times in order.
func (ft FaderTimeline) Times() []float64 {
	out := make([]float64, len(ft))
	for i, bp := range ft {
		out[i] = bp.TimeMs
	}
	return out
}

// Levels returns the breakpoint levels in order.
func (ft FaderTimeline) Levels() []float64 {
	out := make([]float64, len(ft))
	for i, bp := range ft {
		out[i] = bp.Level
	}
	return out
}

// PadSchedule holds one expected press per beat.
type PadSchedule struct {
	PressTimesMs []float64
	Values       []float64
}

// DeviceKind identifies the control surface under test.
type DeviceKind string

const (
	TouchSurface  DeviceKind = "touch-surface"
	MotionSurface DeviceKind = "motion-surface"
)

func ParseDeviceKind(s string) (DeviceKind, error) {
	switch DeviceKind(s) {
	case TouchSurface, MotionSurface:
		return DeviceKind(s), nil
	}
	return "", &ConfigurationError{Field: "device", Reason: fmt.Sprintf("unknown device kind %q", s)}
}

// SignalKind identifies which control stream a run is scored on.
type SignalKind string

const (
	SignalFader SignalKind = "fader"
	SignalPad   SignalKind = "pad"
)

func ParseSignalKind(s string) (SignalKind, error) {
	switch SignalKind(s) {
	case SignalFader, SignalPad:
		return SignalKind(s), nil
	}
	return "", &ConfigurationError{Field: "signal", Reason: fmt.Sprintf("unknown signal kind %q", s)}
}

// Run is one evaluation session loaded from one log file.
type Run struct {
	Index   int
	Device  DeviceKind
	Path    string
	Samples []LogSample
}

// ErrorScore is the scalar error of one run.
type ErrorScore struct {
	RunIndex int        `json:"run_index"`
	Signal   SignalKind `json:"signal"`
	Value    float64    `json:"value"`
}

// Series is an ordered (time, value) pair list handed to renderers.
type Series struct {
	TimestampsMs []float64 `json:"timestamps_ms"`
	Values       []float64 `json:"values"`
}

func (s Series) Len() int { return len(s.TimestampsMs) }
