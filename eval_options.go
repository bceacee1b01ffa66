package unleash

import (
	"github.com/toggleworks/unleash-client-go/model"
)

// FallbackFunc decides the result of IsEnabled for a toggle that is not defined. It is called at
// most once per evaluation, and only for undefined toggles.
type FallbackFunc func(name string, ctx model.Context) bool

// EvalOption customizes a single call to IsEnabled or GetVariant.
type EvalOption interface {
	apply(*evalOptions)
}

type evalOptions struct {
	ctx            *model.Context
	defaultValue   bool
	fallback       FallbackFunc
	defaultVariant *model.Variant
}

type evalOptionFunc func(*evalOptions)

func (f evalOptionFunc) apply(o *evalOptions) { f(o) }

// WithContext sets the evaluation context, instead of the one from Config.ContextProvider.
func WithContext(ctx model.Context) EvalOption {
	return evalOptionFunc(func(o *evalOptions) { o.ctx = &ctx })
}

// WithDefault sets the result of IsEnabled for a toggle that is not defined. The default is false.
func WithDefault(defaultValue bool) EvalOption {
	return evalOptionFunc(func(o *evalOptions) { o.defaultValue = defaultValue })
}

// WithFallbackFunc sets a function that decides the result of IsEnabled for a toggle that is not
// defined. It takes precedence over WithDefault.
func WithFallbackFunc(fn FallbackFunc) EvalOption {
	return evalOptionFunc(func(o *evalOptions) { o.fallback = fn })
}

// WithDefaultVariant sets the variant GetVariant returns when no variant applies, instead of
// model.DisabledVariant.
func WithDefaultVariant(v model.Variant) EvalOption {
	return evalOptionFunc(func(o *evalOptions) { o.defaultVariant = &v })
}

func collectOptions(opts []EvalOption) evalOptions {
	var o evalOptions
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&o)
		}
	}
	return o
}
