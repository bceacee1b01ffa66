package evaluation

import (
	"github.com/toggleworks/unleash-client-go/model"
	"github.com/toggleworks/unleash-client-go/strategy"
)

// SelectVariant picks a variant of a feature for the context.
//
// The disabled sentinel, or defaultVariant if it is not nil, is returned when the feature is
// disabled, has no variants, or its variants have no weight. Otherwise the first variant with an
// override matching the context wins. Failing that, the stickiness value is hashed together with the
// feature name onto the total weight and the variants' cumulative weights are walked in order.
//
// The stickiness setting is taken from the first variant. If it names a field the context does not
// have, a random value is used, so the result is only repeatable for contexts with that field.
func SelectVariant(feature *model.FeatureDefinition, ctx model.Context, defaultVariant *model.Variant) model.Variant {
	if feature == nil || !feature.Enabled || len(feature.Variants) == 0 {
		return noVariant(defaultVariant)
	}
	totalWeight := 0
	for _, v := range feature.Variants {
		totalWeight += v.Weight
	}
	if totalWeight <= 0 {
		return noVariant(defaultVariant)
	}

	if v, ok := overriddenVariant(feature.Variants, ctx); ok {
		return v.ToVariant()
	}

	stickiness, ok := strategy.StickinessValue(feature.Variants[0].Stickiness, ctx)
	if !ok {
		stickiness = strategy.RandomStickiness()
	}
	target := int(strategy.NormalizedValue(stickiness, feature.Name, uint32(totalWeight)))

	counter := 0
	for _, v := range feature.Variants {
		if v.Weight <= 0 {
			continue
		}
		counter += v.Weight
		if counter >= target {
			return v.ToVariant()
		}
	}
	return noVariant(defaultVariant) // COVERAGE: unreachable, target never exceeds totalWeight
}

func overriddenVariant(variants []model.VariantDefinition, ctx model.Context) (model.VariantDefinition, bool) {
	for _, v := range variants {
		for _, o := range v.Overrides {
			if value, ok := ctx.Field(o.ContextName); ok && containsString(o.Values, value) {
				return v, true
			}
		}
	}
	return model.VariantDefinition{}, false
}

func noVariant(defaultVariant *model.Variant) model.Variant {
	if defaultVariant != nil {
		return *defaultVariant
	}
	return model.DisabledVariant
}
