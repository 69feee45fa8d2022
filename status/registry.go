package status

import (
	"fmt"
	"sync/atomic"
)

// Registry is the central metrics facade
// The simulation caches pointers at construction; the step loop writes directly to atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Metric is one formatted registry entry
type Metric struct {
	Key   string
	Value string
}

// Snapshot formats every metric, grouped by type and sorted by key within each group
// Used by HUD overlays and headless reports
func (r *Registry) Snapshot() []Metric {
	out := make([]Metric, 0, r.TotalCount())
	r.Strings.Range(func(key string, ptr *AtomicString) {
		out = append(out, Metric{Key: key, Value: ptr.Load()})
	})
	r.Bools.Range(func(key string, ptr *atomic.Bool) {
		out = append(out, Metric{Key: key, Value: fmt.Sprintf("%t", ptr.Load())})
	})
	r.Ints.Range(func(key string, ptr *atomic.Int64) {
		out = append(out, Metric{Key: key, Value: fmt.Sprintf("%d", ptr.Load())})
	})
	r.Floats.Range(func(key string, ptr *AtomicFloat) {
		out = append(out, Metric{Key: key, Value: fmt.Sprintf("%.3f", ptr.Get())})
	})
	return out
}
