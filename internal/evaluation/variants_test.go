package evaluation

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toggleworks/unleash-client-go/model"
)

func enToFeature() *model.FeatureDefinition {
	return &model.FeatureDefinition{
		Name:    "test",
		Enabled: true,
		Variants: []model.VariantDefinition{
			{Name: "en", Weight: 50, Payload: &model.Payload{Type: "string", Value: "en"}},
			{Name: "to", Weight: 50, Payload: &model.Payload{Type: "string", Value: "to"}},
		},
	}
}

func TestSelectVariantFixtures(t *testing.T) {
	f := enToFeature()

	en := SelectVariant(f, model.Context{UserID: "356"}, nil)
	assert.Equal(t, model.NewVariant("en", "en"), en)

	to := SelectVariant(f, model.Context{UserID: "111"}, nil)
	assert.Equal(t, model.NewVariant("to", "to"), to)
}

func TestSelectVariantUsesSessionIDWithoutUserID(t *testing.T) {
	f := enToFeature()
	assert.Equal(t, "en", SelectVariant(f, model.Context{SessionID: "356"}, nil).Name)
	assert.Equal(t, "to", SelectVariant(f, model.Context{SessionID: "111"}, nil).Name)
}

func TestSelectVariantIsDeterministic(t *testing.T) {
	f := enToFeature()
	for i := 0; i < 100; i++ {
		ctx := model.Context{UserID: strconv.Itoa(i)}
		first := SelectVariant(f, ctx, nil)
		for j := 0; j < 5; j++ {
			assert.Equal(t, first, SelectVariant(f, ctx, nil))
		}
	}
}

func TestSelectVariantDistributionFollowsWeights(t *testing.T) {
	f := &model.FeatureDefinition{
		Name:    "dist",
		Enabled: true,
		Variants: []model.VariantDefinition{
			{Name: "a", Weight: 200},
			{Name: "b", Weight: 300},
			{Name: "c", Weight: 500},
		},
	}
	const samples = 20000
	counts := map[string]int{}
	for i := 0; i < samples; i++ {
		counts[SelectVariant(f, model.Context{UserID: strconv.Itoa(i)}, nil).Name]++
	}
	for name, expected := range map[string]float64{"a": 0.2, "b": 0.3, "c": 0.5} {
		actual := float64(counts[name]) / samples
		assert.LessOrEqual(t, math.Abs(actual-expected), 0.02, "variant %s: %f", name, actual)
	}
}

func TestSelectVariantOverrides(t *testing.T) {
	f := enToFeature()
	f.Variants[1].Overrides = []model.Override{{ContextName: "userId", Values: []string{"356", "7"}}}
	f.Variants[0].Overrides = []model.Override{{ContextName: "plan", Values: []string{"gold"}}}

	assert.Equal(t, "to", SelectVariant(f, model.Context{UserID: "356"}, nil).Name)

	ctx := model.Context{UserID: "7", Properties: map[string]string{"plan": "gold"}}
	assert.Equal(t, "en", SelectVariant(f, ctx, nil).Name, "first variant with a matching override wins")
}

func TestSelectVariantOverrideIgnoresWeight(t *testing.T) {
	f := enToFeature()
	f.Variants = append(f.Variants, model.VariantDefinition{Name: "zero", Weight: 0,
		Overrides: []model.Override{{ContextName: "userId", Values: []string{"356"}}}})

	assert.Equal(t, "zero", SelectVariant(f, model.Context{UserID: "356"}, nil).Name)
}

func TestSelectVariantCustomStickiness(t *testing.T) {
	f := enToFeature()
	f.Variants[0].Stickiness = "tenant"
	f.Variants[1].Stickiness = "tenant"

	ctx := model.Context{UserID: "111", Properties: map[string]string{"tenant": "356"}}
	assert.Equal(t, "en", SelectVariant(f, ctx, nil).Name)
}

func TestSelectVariantSentinels(t *testing.T) {
	def := model.NewVariant("mine", "x")

	for name, f := range map[string]*model.FeatureDefinition{
		"nil feature": nil,
		"disabled":    {Name: "f", Enabled: false, Variants: enToFeature().Variants},
		"no variants": {Name: "f", Enabled: true},
		"zero weight": {Name: "f", Enabled: true, Variants: []model.VariantDefinition{{Name: "a"}, {Name: "b"}}},
	} {
		t.Run(name, func(t *testing.T) {
			v := SelectVariant(f, model.Context{UserID: "1"}, nil)
			assert.Equal(t, model.DisabledVariant, v)
			assert.Equal(t, "disabled", v.Name)
			assert.False(t, v.Enabled)
			assert.Nil(t, v.Payload)

			assert.Equal(t, def, SelectVariant(f, model.Context{UserID: "1"}, &def))
		})
	}
}

func TestSelectVariantPayloadIsACopy(t *testing.T) {
	f := enToFeature()
	v := SelectVariant(f, model.Context{UserID: "356"}, nil)
	require.NotNil(t, v.Payload)
	v.Payload.Value = "changed"
	assert.Equal(t, "en", f.Variants[0].Payload.Value)
}
