package unleashprom

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/toggleworks/unleash-client-go/interfaces"
)

var allStates = []interfaces.RepositoryState{ //nolint:gochecknoglobals
	interfaces.RepositoryStateUninitialized,
	interfaces.RepositoryStateBootstrapping,
	interfaces.RepositoryStateSynchronized,
	interfaces.RepositoryStateDegraded,
}

// Metrics is an interfaces.MetricsSink backed by Prometheus collectors.
type Metrics struct {
	toggles  *prometheus.CounterVec
	variants *prometheus.CounterVec
	events   *prometheus.CounterVec
	state    *prometheus.GaugeVec
	features prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. The namespace is prepended to every
// metric name; it may be empty.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		toggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unleash_toggle_evaluations_total",
				Help:      "Number of toggle evaluations by toggle name and result",
			},
			[]string{"toggle", "enabled"},
		),
		variants: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unleash_variant_evaluations_total",
				Help:      "Number of variant evaluations by toggle name and variant",
			},
			[]string{"toggle", "variant"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unleash_repository_events_total",
				Help:      "Number of repository events by kind",
			},
			[]string{"kind"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "unleash_repository_state",
				Help:      "1 for the current repository state, 0 for all others",
			},
			[]string{"state"},
		),
		features: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unleash_repository_features",
			Help:      "Number of features in the current snapshot",
		}),
	}
	for _, c := range []prometheus.Collector{m.toggles, m.variants, m.events, m.state, m.features} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	m.setState(interfaces.RepositoryStateUninitialized)
	return m, nil
}

// CountToggle implements interfaces.MetricsSink.
func (m *Metrics) CountToggle(name string, enabled bool) {
	m.toggles.WithLabelValues(name, strconv.FormatBool(enabled)).Inc()
}

// CountVariant implements interfaces.MetricsSink.
func (m *Metrics) CountVariant(name string, variantName string) {
	m.variants.WithLabelValues(name, variantName).Inc()
}

// Observe records a single repository event.
func (m *Metrics) Observe(event interfaces.RepositoryEvent) {
	m.events.WithLabelValues(string(event.Kind)).Inc()
	if event.State != "" {
		m.setState(event.State)
	}
	m.features.Set(float64(event.FeatureCount))
}

// ObserveRepository records every event received from ch until it is closed.
func (m *Metrics) ObserveRepository(ch <-chan interfaces.RepositoryEvent) {
	for event := range ch {
		m.Observe(event)
	}
}

func (m *Metrics) setState(current interfaces.RepositoryState) {
	for _, s := range allStates {
		value := 0.0
		if s == current {
			value = 1
		}
		m.state.WithLabelValues(string(s)).Set(value)
	}
}
