package extract

import (
	"context"
	"sync"

	"github.com/leofalp/outparse/providers/observability"
)

type logEntry struct {
	level string
	msg   string
	attrs map[string]any
}

// recorder is an in-memory observability.Provider for assertions on logs
// and counters.
type recorder struct {
	mu       sync.Mutex
	entries  []logEntry
	counters map[string]int64
}

var _ observability.Provider = (*recorder)(nil)

func newRecorder() *recorder {
	return &recorder{counters: make(map[string]int64)}
}

func (r *recorder) add(level, msg string, attrs []observability.Attribute) {
	m := make(map[string]any, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, logEntry{level: level, msg: msg, attrs: m})
}

func (r *recorder) Debug(_ context.Context, msg string, attrs ...observability.Attribute) {
	r.add("debug", msg, attrs)
}

func (r *recorder) Info(_ context.Context, msg string, attrs ...observability.Attribute) {
	r.add("info", msg, attrs)
}

func (r *recorder) Warn(_ context.Context, msg string, attrs ...observability.Attribute) {
	r.add("warn", msg, attrs)
}

func (r *recorder) Error(_ context.Context, msg string, attrs ...observability.Attribute) {
	r.add("error", msg, attrs)
}

func (r *recorder) Counter(name string) observability.Counter {
	return recorderMetric{r: r, name: name}
}

func (r *recorder) Histogram(name string) observability.Histogram {
	return recorderMetric{r: r, name: name}
}

type recorderMetric struct {
	r    *recorder
	name string
}

func (m recorderMetric) Add(_ context.Context, value int64, _ ...observability.Attribute) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	m.r.counters[m.name] += value
}

func (m recorderMetric) Record(context.Context, float64, ...observability.Attribute) {}

// at returns the entries logged at level.
func (r *recorder) at(level string) []logEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []logEntry
	for _, e := range r.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) counter(name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[name]
}
