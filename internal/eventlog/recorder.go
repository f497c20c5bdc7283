package eventlog

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Message is one control message as delivered by the transport.
type Message struct {
	Address string
	Params  [2]string // routing parameters: tag, surface
	Args    []float64
}

// Route holds the routing parameters registered for an address.
type Route struct {
	Tag     string
	Surface string
}

// Routes maps message addresses to their routing parameters.
type Routes map[string]Route

// DefaultRoutes returns the addresses sent by the two control surfaces.
func DefaultRoutes() Routes {
	return Routes{
		// motion surface
		"/slider/value": {Tag: "slider", Surface: "oscxr"},
		"/gyro/values":  {Tag: "gyro", Surface: "oscxr"},
		"/pad/pressed":  {Tag: "pad", Surface: "oscxr"},

		// touch surface
		"/1/freq": {Tag: "slider", Surface: "touchosc"},
		"/1/push": {Tag: "pad", Surface: "touchosc"},
		"/accxyz": {Tag: "acc", Surface: "touchosc"},
	}
}

// Recorder writes one log line per received message.
type Recorder struct {
	mu     sync.Mutex
	w      io.Writer
	name   string
	level  string
	now    func() time.Time
	routes Routes
}

type RecorderOption func(*Recorder)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		r.now = now
	}
}

func WithRoutes(routes Routes) RecorderOption {
	return func(r *Recorder) {
		r.routes = routes
	}
}

// WithLoggerName sets the second field of every line (default "osc").
func WithLoggerName(name string) RecorderOption {
	return func(r *Recorder) {
		r.name = name
	}
}

func NewRecorder(w io.Writer, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		w:      w,
		name:   "osc",
		level:  "INFO",
		now:    time.Now,
		routes: DefaultRoutes(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends the line for msg, stamped with the recorder's clock.
// It is safe to call from concurrent transport handlers.
func (r *Recorder) Record(msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := r.formatLine(r.now(), msg)
	if _, err := io.WriteString(r.w, line+"\n"); err != nil {
		return fmt.Errorf("writing log line: %w", err)
	}
	return nil
}

// RecordAddress records args under the routing parameters registered for address.
func (r *Recorder) RecordAddress(address string, args ...float64) error {
	route, ok := r.routes[address]
	if !ok {
		return fmt.Errorf("no route registered for address %q", address)
	}
	return r.Record(Message{
		Address: address,
		Params:  [2]string{route.Tag, route.Surface},
		Args:    args,
	})
}

// FormatLine renders msg the way Recorder writes it, without the newline.
func FormatLine(ts time.Time, msg Message) string {
	return NewRecorder(io.Discard).formatLine(ts, msg)
}

func (r *Recorder) formatLine(ts time.Time, msg Message) string {
	var args strings.Builder
	for _, a := range msg.Args {
		args.WriteString(" ")
		args.WriteString(FormatValue(a))
		args.WriteString(",")
	}

	return strings.Join([]string{
		ts.Format(TimestampLayout),
		r.name,
		r.level,
		msg.Params[0],
		msg.Params[1],
		msg.Address,
		args.String(),
	}, Delimiter)
}
