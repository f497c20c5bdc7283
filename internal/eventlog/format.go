package eventlog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Delimiter separates the fields of a log line.
	Delimiter = " - "

	// TimestampLayout matches "2024-03-01 14:22:05,123".
	TimestampLayout = "2006-01-02 15:04:05,000"

	// DiscriminatorField is the index of the routing tag in a line
	// (timestamp, logger name, level, tag, surface, address, values).
	DiscriminatorField = 3

	DefaultDiscriminator = "pad"

	// PressValue is emitted for every line selected by the discriminator.
	PressValue = 1.0
)

// Format selects how a log file is turned into samples.
type Format int

const (
	// FormatValues parses the trailing comma-separated value list of every line.
	FormatValues Format = iota
	// FormatDiscriminated keeps only lines whose tag field equals the
	// discriminator and gives each of them the value PressValue.
	FormatDiscriminated
)

func (f Format) String() string {
	switch f {
	case FormatValues:
		return "values"
	case FormatDiscriminated:
		return "discriminated"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat accepts the names produced by Format.String.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "values":
		return FormatValues, nil
	case "discriminated":
		return FormatDiscriminated, nil
	}
	return 0, fmt.Errorf("unknown log format %q", s)
}

// ParseTimestamp converts a log timestamp to Unix epoch milliseconds (UTC).
func ParseTimestamp(s string) (float64, error) {
	t, err := time.Parse(TimestampLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return float64(t.UnixMicro()) / 1e3, nil
}

// FormatValue renders v with 4 significant digits. Fixed notation always keeps
// one fractional digit, so 1 becomes "1.0" and 0.123456 becomes "0.1235".
func FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'g', 4, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}
