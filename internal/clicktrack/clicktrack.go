// Package clicktrack renders the expected pad schedule as a metronome WAV so
// performers can play along at the tempo the evaluation expects.
package clicktrack

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/himanishpuri/SurfaceEval/pkg/models"
)

const (
	DefaultSampleRate = 44100
	bitDepth          = 16
	pcmFormat         = 1
)

type Config struct {
	SampleRate  int
	ClickMs     float64 // click length
	FreqHz      float64 // normal beat pitch
	AccentHz    float64 // pitch of the first beat of each bar
	BeatsPerBar int
	Amplitude   float64 // 0..1
	TailMs      float64 // silence after the last click
}

func DefaultConfig() Config {
	return Config{
		SampleRate:  DefaultSampleRate,
		ClickMs:     30,
		FreqHz:      1000,
		AccentHz:    1500,
		BeatsPerBar: 4,
		Amplitude:   0.8,
		TailMs:      500,
	}
}

// Render returns mono 16-bit PCM samples with one click per scheduled press.
func Render(schedule models.PadSchedule, cfg Config) []int {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.BeatsPerBar <= 0 {
		cfg.BeatsPerBar = 4
	}

	var last float64
	for _, t := range schedule.PressTimesMs {
		last = math.Max(last, t)
	}
	total := msToSamples(last+cfg.ClickMs+cfg.TailMs, cfg.SampleRate)
	out := make([]int, total)

	peak := cfg.Amplitude * float64(int(1)<<(bitDepth-1)-1)
	clickLen := msToSamples(cfg.ClickMs, cfg.SampleRate)
	for beat, t := range schedule.PressTimesMs {
		freq := cfg.FreqHz
		if beat%cfg.BeatsPerBar == 0 {
			freq = cfg.AccentHz
		}
		start := msToSamples(t, cfg.SampleRate)
		for i := 0; i < clickLen && start+i < total; i++ {
			// linear decay envelope
			env := 1 - float64(i)/float64(clickLen)
			s := math.Sin(2 * math.Pi * freq * float64(i) / float64(cfg.SampleRate))
			out[start+i] = int(math.Round(peak * env * s))
		}
	}
	return out
}

// Write renders schedule and stores it as a WAV file at path.
func Write(path string, schedule models.PadSchedule, cfg Config) error {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	data := Render(schedule, cfg)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating click track: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, cfg.SampleRate, bitDepth, 1, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: cfg.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoding click track: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing click track: %w", err)
	}
	return nil
}

func msToSamples(ms float64, sampleRate int) int {
	return int(math.Round(ms * float64(sampleRate) / 1000))
}
