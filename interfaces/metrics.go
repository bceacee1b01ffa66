package interfaces

// MetricsSink receives one sample for every evaluation made by the client.
//
// Implementations are called synchronously on the evaluating goroutine, so they must be fast and
// safe for concurrent use. A panic in a sink is recovered and logged; it never changes an
// evaluation result.
type MetricsSink interface {
	// CountToggle records the outcome of an IsEnabled call for a toggle.
	CountToggle(name string, enabled bool)
	// CountVariant records the variant returned by a GetVariant call.
	CountVariant(name string, variantName string)
}

// NoOpMetricsSink returns a MetricsSink that discards all samples.
func NoOpMetricsSink() MetricsSink {
	return noOpMetricsSink{}
}

type noOpMetricsSink struct{}

func (noOpMetricsSink) CountToggle(string, bool) {}

func (noOpMetricsSink) CountVariant(string, string) {}
