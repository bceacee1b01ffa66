package sharedtest

import (
	"sync"

	"golang.org/x/exp/slices"
)

// ToggleSample is one call to MetricsSink.CountToggle.
type ToggleSample struct {
	Name    string
	Enabled bool
}

// VariantSample is one call to MetricsSink.CountVariant.
type VariantSample struct {
	Name    string
	Variant string
}

// RecordingMetricsSink is a MetricsSink that remembers every sample.
type RecordingMetricsSink struct {
	toggles  []ToggleSample
	variants []VariantSample
	lock     sync.Mutex
}

func (m *RecordingMetricsSink) CountToggle(name string, enabled bool) { //nolint:revive
	m.lock.Lock()
	defer m.lock.Unlock()
	m.toggles = append(m.toggles, ToggleSample{Name: name, Enabled: enabled})
}

func (m *RecordingMetricsSink) CountVariant(name, variant string) { //nolint:revive
	m.lock.Lock()
	defer m.lock.Unlock()
	m.variants = append(m.variants, VariantSample{Name: name, Variant: variant})
}

// Toggles returns a copy of the recorded toggle samples.
func (m *RecordingMetricsSink) Toggles() []ToggleSample {
	m.lock.Lock()
	defer m.lock.Unlock()
	return slices.Clone(m.toggles)
}

// Variants returns a copy of the recorded variant samples.
func (m *RecordingMetricsSink) Variants() []VariantSample {
	m.lock.Lock()
	defer m.lock.Unlock()
	return slices.Clone(m.variants)
}

// PanickingMetricsSink panics on every call.
type PanickingMetricsSink struct{}

func (PanickingMetricsSink) CountToggle(string, bool) { panic("toggle") } //nolint:revive

func (PanickingMetricsSink) CountVariant(string, string) { panic("variant") } //nolint:revive
