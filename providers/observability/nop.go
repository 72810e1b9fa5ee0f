package observability

import "context"

// Nop is a Provider that discards everything. It is the default sink of the
// extractors so library callers that never configure logging pay nothing.
type Nop struct{}

var _ Provider = Nop{}

func (Nop) Counter(string) Counter { return nopMetric{} }
func (Nop) Histogram(string) Histogram { return nopMetric{} }
func (Nop) Debug(context.Context, string, ...Attribute) {}
func (Nop) Info(context.Context, string, ...Attribute) {}
func (Nop) Warn(context.Context, string, ...Attribute) {}
func (Nop) Error(context.Context, string, ...Attribute) {}

type nopMetric struct{}

func (nopMetric) Add(context.Context, int64, ...Attribute) {}
func (nopMetric) Record(context.Context, float64, ...Attribute) {}
