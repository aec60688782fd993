// Package metrics emits operational metrics as structured JSON lines on
// stdout, one line per operation. Log shippers can extract counters and
// timings from the lines without the bot making any network calls.
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Standard metric units.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitBytes        = "Bytes"
	UnitNone         = "None"
)

// out is the destination for metric lines. outMu serializes writes so
// recorders flushing on separate goroutines emit whole lines, and
// guards the destination swap in SetOutput.
var (
	outMu sync.Mutex
	out   io.Writer = os.Stdout
)

// SetOutput redirects metric lines, returning a restore function.
func SetOutput(w io.Writer) func() {
	outMu.Lock()
	defer outMu.Unlock()
	prev := out
	out = w
	return func() {
		outMu.Lock()
		defer outMu.Unlock()
		out = prev
	}
}

// metricValue is one recorded measurement.
type metricValue struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Recorder accumulates metrics and properties for a single flush.
// It is not safe for concurrent use; create one per operation.
type Recorder struct {
	component  string
	metrics    map[string]metricValue
	properties map[string]interface{}
}

// New creates a Recorder attributed to the given component
// (e.g. "transcoder", "gateway").
func New(component string) *Recorder {
	return &Recorder{
		component:  component,
		metrics:    make(map[string]metricValue),
		properties: make(map[string]interface{}),
	}
}

// Metric records a named measurement with one of the Unit* constants.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = metricValue{Value: value, Unit: unit}
	return r
}

// Count is a convenience for recording a count metric (value = 1).
func (r *Recorder) Count(name string) *Recorder {
	return r.Metric(name, 1, UnitCount)
}

// Property adds a non-metric field to the line, for correlation
// (submission id, pack name) rather than aggregation.
func (r *Recorder) Property(key string, value interface{}) *Recorder {
	r.properties[key] = value
	return r
}

// Flush serializes the recorder as a single JSON line. A Recorder with
// no metrics flushes nothing. Recorders are single-use.
func (r *Recorder) Flush() {
	if len(r.metrics) == 0 {
		return
	}

	doc := map[string]interface{}{
		"ts":        time.Now().UnixMilli(),
		"component": r.component,
		"metrics":   r.metrics,
	}
	for k, v := range r.properties {
		doc[k] = v
	}

	data, err := json.Marshal(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "metrics: failed to marshal: %v\n", err)
		return
	}

	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintln(out, string(data))
}
