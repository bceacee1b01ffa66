package evaluation

import (
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"

	"github.com/stretchr/testify/assert"

	"github.com/toggleworks/unleash-client-go/internal/sharedtest"
	"github.com/toggleworks/unleash-client-go/model"
	"github.com/toggleworks/unleash-client-go/strategy"
)

func userWithIDFeature(userIDs string) *model.FeatureDefinition {
	return &model.FeatureDefinition{
		Name:    "featureX",
		Enabled: true,
		Strategies: []model.ActivationStrategy{
			{Name: "userWithId", Parameters: map[string]string{"userIds": userIDs}},
		},
	}
}

func TestIsEnabledUserWithIDFixture(t *testing.T) {
	e := newTestEvaluator()
	f := userWithIDFeature("123, 111, 121")

	assert.True(t, e.IsEnabled("featureX", f, model.Context{UserID: "111"}, false, nil))
	assert.False(t, e.IsEnabled("featureX", f, model.Context{UserID: "999"}, false, nil))
}

func TestIsEnabledDisabledFeatureSkipsStrategies(t *testing.T) {
	called := false
	spy := strategy.Func("spy", func(map[string]string, model.Context) bool {
		called = true
		return true
	})
	e := NewEvaluator(Config{Registry: strategy.NewRegistry(spy), Loggers: ldlog.NewDisabledLoggers()})
	f := &model.FeatureDefinition{Name: "f", Enabled: false,
		Strategies: []model.ActivationStrategy{{Name: "spy"}}}

	assert.False(t, e.IsEnabled("f", f, model.Context{}, true, nil))
	assert.False(t, called)
}

func TestIsEnabledWithNoStrategies(t *testing.T) {
	e := newTestEvaluator()
	assert.True(t, e.IsEnabled("f", &model.FeatureDefinition{Name: "f", Enabled: true}, model.Context{}, false, nil))
}

func TestIsEnabledIsDisjunctionOverStrategies(t *testing.T) {
	e := newTestEvaluator()
	f := &model.FeatureDefinition{Name: "f", Enabled: true, Strategies: []model.ActivationStrategy{
		{Name: "userWithId", Parameters: map[string]string{"userIds": "1"}},
		{Name: "userWithId", Parameters: map[string]string{"userIds": "2"}},
	}}

	assert.True(t, e.IsEnabled("f", f, model.Context{UserID: "1"}, false, nil))
	assert.True(t, e.IsEnabled("f", f, model.Context{UserID: "2"}, false, nil))
	assert.False(t, e.IsEnabled("f", f, model.Context{UserID: "3"}, false, nil))
}

func TestIsEnabledUndefinedToggle(t *testing.T) {
	e := newTestEvaluator()
	ctx := model.Context{UserID: "1"}

	assert.False(t, e.IsEnabled("nope", nil, ctx, false, nil))
	assert.True(t, e.IsEnabled("nope", nil, ctx, true, nil))

	t.Run("fallback function takes precedence and is called once", func(t *testing.T) {
		var calls []string
		fallback := func(name string, c model.Context) bool {
			calls = append(calls, name+":"+c.UserID)
			return true
		}
		assert.True(t, e.IsEnabled("nope", nil, ctx, false, fallback))
		assert.Equal(t, []string{"nope:1"}, calls)
	})

	t.Run("fallback function is not called for defined toggles", func(t *testing.T) {
		fallback := func(string, model.Context) bool {
			t.Fatal("fallback should not be called")
			return true
		}
		f := &model.FeatureDefinition{Name: "f", Enabled: false}
		assert.False(t, e.IsEnabled("f", f, ctx, true, fallback))
	})
}

func TestStrategyConstraintsAreCheckedFirst(t *testing.T) {
	e := newTestEvaluator()
	s := model.ActivationStrategy{
		Name: "default",
		Constraints: []model.Constraint{
			{ContextName: "environment", Operator: model.OperatorIn, Values: []string{"prod"}},
		},
	}

	assert.True(t, e.StrategyActive(s, model.Context{Environment: "prod"}))
	assert.False(t, e.StrategyActive(s, model.Context{Environment: "dev"}))
}

func TestUnknownStrategyUsesFallback(t *testing.T) {
	s := model.ActivationStrategy{Name: "mystery"}

	assert.False(t, newTestEvaluator().StrategyActive(s, model.Context{}))

	alwaysOn := strategy.Func("alwaysOn", func(map[string]string, model.Context) bool { return true })
	e := NewEvaluator(Config{Fallback: alwaysOn, Loggers: ldlog.NewDisabledLoggers()})
	assert.True(t, e.StrategyActive(s, model.Context{}))
}

func TestCustomStrategyReceivesParametersAndContext(t *testing.T) {
	var gotParams map[string]string
	var gotCtx model.Context
	custom := strategy.Func("custom", func(params map[string]string, ctx model.Context) bool {
		gotParams, gotCtx = params, ctx
		return true
	})
	e := NewEvaluator(Config{Registry: strategy.NewRegistry(custom), Loggers: ldlog.NewDisabledLoggers()})
	s := model.ActivationStrategy{Name: "custom", Parameters: map[string]string{"a": "b"}}

	assert.True(t, e.StrategyActive(s, model.Context{UserID: "u"}))
	assert.Equal(t, map[string]string{"a": "b"}, gotParams)
	assert.Equal(t, "u", gotCtx.UserID)
}

func TestPanickingStrategyIsInactive(t *testing.T) {
	mockLog := ldlogtest.NewMockLog()
	bad := strategy.Func("bad", func(map[string]string, model.Context) bool { panic("oops") })
	e := NewEvaluator(Config{Registry: strategy.NewRegistry(bad), Loggers: mockLog.Loggers})
	f := &model.FeatureDefinition{Name: "f", Enabled: true, Strategies: []model.ActivationStrategy{
		{Name: "bad"}, {Name: "default"},
	}}

	assert.False(t, e.StrategyActive(model.ActivationStrategy{Name: "bad"}, model.Context{}))
	assert.True(t, e.FeatureActive(f, model.Context{}))
	mockLog.AssertMessageMatch(t, true, ldlog.Error, `Strategy "bad" panicked`)
}

func TestIsEnabledRecordsOneSamplePerCall(t *testing.T) {
	metrics := &sharedtest.RecordingMetricsSink{}
	e := NewEvaluator(Config{Metrics: metrics, Loggers: ldlog.NewDisabledLoggers()})
	f := userWithIDFeature("1")

	e.IsEnabled("featureX", f, model.Context{UserID: "1"}, false, nil)
	e.IsEnabled("featureX", f, model.Context{UserID: "2"}, false, nil)
	e.IsEnabled("undefined", nil, model.Context{}, true, nil)

	assert.Equal(t, []sharedtest.ToggleSample{{Name: "featureX", Enabled: true}, {Name: "featureX", Enabled: false}, {Name: "undefined", Enabled: true}},
		metrics.Toggles())
}

func TestMetricsPanicDoesNotAffectResult(t *testing.T) {
	mockLog := ldlogtest.NewMockLog()
	e := NewEvaluator(Config{Metrics: sharedtest.PanickingMetricsSink{}, Loggers: mockLog.Loggers})
	f := &model.FeatureDefinition{Name: "f", Enabled: true}

	assert.True(t, e.IsEnabled("f", f, model.Context{}, false, nil))
	assert.Equal(t, model.DisabledVariant, e.GetVariant("f", f, model.Context{}, nil))
	mockLog.AssertMessageMatch(t, true, ldlog.Error, "Metrics sink panicked: toggle")
	mockLog.AssertMessageMatch(t, true, ldlog.Error, "Metrics sink panicked: variant")
}

func TestGetVariantRequiresActiveFeature(t *testing.T) {
	metrics := &sharedtest.RecordingMetricsSink{}
	e := NewEvaluator(Config{Metrics: metrics, Loggers: ldlog.NewDisabledLoggers()})
	f := enToFeature()
	f.Strategies = []model.ActivationStrategy{{Name: "userWithId", Parameters: map[string]string{"userIds": "356"}}}
	def := model.NewVariant("fallback", "x")

	assert.Equal(t, "en", e.GetVariant("test", f, model.Context{UserID: "356"}, nil).Name)
	assert.Equal(t, model.DisabledVariant, e.GetVariant("test", f, model.Context{UserID: "111"}, nil))
	assert.Equal(t, def, e.GetVariant("test", f, model.Context{UserID: "111"}, &def))
	assert.Equal(t, def, e.GetVariant("undefined", nil, model.Context{UserID: "356"}, &def))

	assert.Equal(t, []sharedtest.VariantSample{{Name: "test", Variant: "en"}, {Name: "test", Variant: "disabled"}, {Name: "test", Variant: "fallback"},
		{Name: "undefined", Variant: "fallback"}}, metrics.Variants())
	assert.Equal(t, []sharedtest.ToggleSample{{Name: "test", Enabled: true}, {Name: "test", Enabled: false}, {Name: "test", Enabled: false}, {Name: "undefined", Enabled: false}},
		metrics.Toggles())
}
