package evaluation

import (
	"sync"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/toggleworks/unleash-client-go/interfaces"
	"github.com/toggleworks/unleash-client-go/model"
	"github.com/toggleworks/unleash-client-go/strategy"
)

// FallbackFunc decides the result for a toggle that is not defined.
type FallbackFunc func(name string, ctx model.Context) bool

// Config contains the collaborators of an Evaluator. Every field is optional.
type Config struct {
	Registry *strategy.Registry
	// Fallback is used for strategy names that are not in the registry. Defaults to strategy.Unknown.
	Fallback strategy.Strategy
	Metrics  interfaces.MetricsSink
	Loggers  ldlog.Loggers
	// Now is the clock used by date constraints on the current time. Defaults to time.Now.
	Now func() time.Time
}

// Evaluator evaluates feature definitions against contexts. It is safe for concurrent use and
// holds no per-feature state.
type Evaluator struct {
	registry         *strategy.Registry
	fallback         strategy.Strategy
	metrics          interfaces.MetricsSink
	loggers          ldlog.Loggers
	now              func() time.Time
	unknownOperators sync.Map
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(config Config) *Evaluator {
	e := &Evaluator{
		registry: config.Registry,
		fallback: config.Fallback,
		metrics:  config.Metrics,
		loggers:  config.Loggers,
		now:      config.Now,
	}
	if e.registry == nil {
		e.registry = strategy.NewRegistry()
	}
	if e.fallback == nil {
		e.fallback = strategy.Unknown
	}
	if e.metrics == nil {
		e.metrics = interfaces.NoOpMetricsSink()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// IsEnabled evaluates a toggle and records one metric sample.
//
// feature is nil when the toggle is not defined. In that case fallback decides if it is set, and
// otherwise defaultValue is returned. A defined but disabled feature is false without any strategy
// being consulted. An enabled feature with no strategies is true.
func (e *Evaluator) IsEnabled(
	name string,
	feature *model.FeatureDefinition,
	ctx model.Context,
	defaultValue bool,
	fallback FallbackFunc,
) bool {
	var result bool
	switch {
	case feature == nil && fallback != nil:
		result = fallback(name, ctx)
	case feature == nil:
		result = defaultValue
	default:
		result = e.FeatureActive(feature, ctx)
	}
	e.countToggle(name, result)
	return result
}

// FeatureActive reports whether a defined feature is active for the context.
func (e *Evaluator) FeatureActive(feature *model.FeatureDefinition, ctx model.Context) bool {
	if !feature.Enabled {
		return false
	}
	if len(feature.Strategies) == 0 {
		return true
	}
	for _, s := range feature.Strategies {
		if e.StrategyActive(s, ctx) {
			return true
		}
	}
	return false
}

// StrategyActive evaluates one activation strategy: its constraints first, then the registered
// implementation. A panic in the implementation is logged and counts as inactive.
func (e *Evaluator) StrategyActive(s model.ActivationStrategy, ctx model.Context) (active bool) {
	if !e.MatchConstraints(s.Constraints, ctx) {
		return false
	}
	impl, ok := e.registry.Lookup(s.Name)
	if !ok {
		if e.loggers.IsDebugEnabled() {
			e.loggers.Debugf("Strategy %q is not registered, using fallback strategy %q", s.Name, e.fallback.Name())
		}
		impl = e.fallback
	}
	defer func() {
		if r := recover(); r != nil {
			e.loggers.Errorf("Strategy %q panicked and will be treated as inactive: %v", s.Name, r)
			active = false
		}
	}()
	return impl.IsEnabled(s.Parameters, ctx)
}

// GetVariant selects the variant for a toggle and records one toggle sample and one variant sample.
//
// defaultVariant, if not nil, replaces the disabled sentinel whenever no variant applies: the toggle
// is undefined, not active for the context, or has no usable variants.
func (e *Evaluator) GetVariant(
	name string,
	feature *model.FeatureDefinition,
	ctx model.Context,
	defaultVariant *model.Variant,
) model.Variant {
	enabled := feature != nil && e.FeatureActive(feature, ctx)
	var result model.Variant
	if enabled {
		result = SelectVariant(feature, ctx, defaultVariant)
	} else {
		result = noVariant(defaultVariant)
	}
	e.countToggle(name, enabled)
	e.countVariant(name, result.Name)
	return result
}

func (e *Evaluator) countToggle(name string, enabled bool) {
	defer e.recoverMetricsPanic()
	e.metrics.CountToggle(name, enabled)
}

func (e *Evaluator) countVariant(name, variant string) {
	defer e.recoverMetricsPanic()
	e.metrics.CountVariant(name, variant)
}

func (e *Evaluator) recoverMetricsPanic() {
	if r := recover(); r != nil {
		e.loggers.Errorf("Metrics sink panicked: %v", r)
	}
}
