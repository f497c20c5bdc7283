package eventlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/himanishpuri/SurfaceEval/pkg/models"
)

// ParseOptions configures how lines become samples.
type ParseOptions struct {
	Format        Format
	Discriminator string // only used by FormatDiscriminated; defaults to "pad"
}

func (o ParseOptions) discriminator() string {
	if o.Discriminator == "" {
		return DefaultDiscriminator
	}
	return o.Discriminator
}

// ParseFile reads the log at path and returns its zero-based samples.
func ParseFile(path string, opts ParseOptions) ([]models.LogSample, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.MissingLogFileError{Path: path, RunIndex: -1}
		}
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	return Parse(f, path, opts)
}

// Parse reads log lines from r. path is only used in error messages.
func Parse(r io.Reader, path string, opts ParseOptions) ([]models.LogSample, error) {
	var samples []models.LogSample

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		sample, keep, err := parseLine(text, opts)
		if err != nil {
			err.Path = path
			err.Line = lineNo
			return nil, err
		}
		if keep {
			samples = append(samples, sample)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	ZeroBase(samples)
	return samples, nil
}

// parseLine returns keep=false for lines the discriminator filters out.
func parseLine(text string, opts ParseOptions) (models.LogSample, bool, *models.MalformedLogLineError) {
	malformed := func(reason string, err error) *models.MalformedLogLineError {
		return &models.MalformedLogLineError{Text: text, Reason: reason, Err: err}
	}

	line := strings.TrimRight(text, " \t\r\n")
	fields := strings.Split(line, Delimiter)
	if len(fields) < 2 {
		return models.LogSample{}, false, malformed("missing field delimiter", nil)
	}

	ts, err := ParseTimestamp(fields[0])
	if err != nil {
		return models.LogSample{}, false, malformed("bad timestamp", err)
	}

	if opts.Format == FormatDiscriminated {
		if len(fields) <= DiscriminatorField {
			return models.LogSample{}, false, malformed(fmt.Sprintf("expected at least %d fields", DiscriminatorField+1), nil)
		}
		if strings.TrimSpace(fields[DiscriminatorField]) != opts.discriminator() {
			return models.LogSample{}, false, nil
		}
		return models.LogSample{TimestampMs: ts, Values: []float64{PressValue}}, true, nil
	}

	values, err := parseValues(fields[len(fields)-1])
	if errors.Is(err, errNonFinite) {
		return models.LogSample{}, false, malformed("non-finite value", err)
	}
	if err != nil {
		return models.LogSample{}, false, malformed("bad value list", err)
	}
	return models.LogSample{TimestampMs: ts, Values: values}, true, nil
}

var errNonFinite = errors.New("value is NaN or infinite")

// parseValues parses "0.5, 0.25," style lists; a single trailing comma is allowed.
func parseValues(field string) ([]float64, error) {
	field = strings.TrimSpace(field)
	field = strings.TrimSuffix(field, ",")
	if field == "" {
		return nil, errors.New("empty value list")
	}

	parts := strings.Split(field, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errNonFinite
		}
		values = append(values, v)
	}
	return values, nil
}

// ZeroBase shifts timestamps in place so the smallest one becomes 0.
func ZeroBase(samples []models.LogSample) {
	if len(samples) == 0 {
		return
	}
	lo := samples[0].TimestampMs
	for _, s := range samples[1:] {
		if s.TimestampMs < lo {
			lo = s.TimestampMs
		}
	}
	for i := range samples {
		samples[i].TimestampMs -= lo
	}
}
