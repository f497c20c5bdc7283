package models

// Stats summarizes per-run errors.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// RunFailure records why a run could not be scored.
type RunFailure struct {
	RunIndex int    `json:"run_index"`
	Path     string `json:"path"`
	Message  string `json:"message"`
}

// RunSeries is everything a renderer needs to draw one run.
type RunSeries struct {
	RunIndex int       `json:"run_index"`
	Path     string    `json:"path"`
	Observed Series    `json:"observed"`
	Expected []float64 `json:"expected,omitempty"` // fader: aligned level per sample; pad: expected press time
	Score    float64   `json:"score"`
	Failed   bool      `json:"failed,omitempty"`
}

// Report is the result of one evaluation batch, in run order.
type Report struct {
	ID        string       `json:"id,omitempty"`
	Name      string       `json:"name"`
	Device    DeviceKind   `json:"device"`
	Signal    SignalKind   `json:"signal"`
	BPM       float64      `json:"bpm"`
	NumBeats  int          `json:"num_beats"`
	Pattern   []float64    `json:"pattern"`
	Expected  Series       `json:"expected"`
	Runs      []RunSeries  `json:"runs"`
	Complete  bool         `json:"complete"`
	MeanError float64      `json:"mean_error"`
	Stats     Stats        `json:"stats"`
	Failures  []RunFailure `json:"failures,omitempty"`
}
