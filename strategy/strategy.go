// Package strategy defines activation strategies: the named rules that decide whether an enabled
// feature is active for a given context.
//
// Every strategy implements the Strategy interface and is looked up by name in a Registry. The
// built-in strategies are always registered; applications add their own by passing them in
// the client configuration, and a custom strategy replaces a built-in one with the same name.
package strategy

import (
	"github.com/toggleworks/unleash-client-go/model"
)

// Strategy is an activation strategy implementation.
//
// IsEnabled receives the parameters configured for one use of the strategy on a feature, and the
// evaluation context. It must be safe for concurrent use and must not retain the parameter map.
type Strategy interface {
	Name() string
	IsEnabled(params map[string]string, ctx model.Context) bool
}

// Func adapts a plain function to the Strategy interface.
func Func(name string, fn func(params map[string]string, ctx model.Context) bool) Strategy {
	return funcStrategy{name: name, fn: fn}
}

type funcStrategy struct {
	name string
	fn   func(map[string]string, model.Context) bool
}

func (s funcStrategy) Name() string { return s.name }

func (s funcStrategy) IsEnabled(params map[string]string, ctx model.Context) bool {
	return s.fn(params, ctx)
}

// Unknown is the fallback used for strategy names that are not registered. It is never enabled.
var Unknown Strategy = unknownStrategy{} //nolint:gochecknoglobals

type unknownStrategy struct{}

func (unknownStrategy) Name() string { return "unknown" }

func (unknownStrategy) IsEnabled(map[string]string, model.Context) bool { return false }

// Registry maps strategy names to implementations. It is built once and is read-only afterward.
type Registry struct {
	strategies map[string]Strategy
}

// Builtins returns new instances of all built-in strategies.
func Builtins() []Strategy {
	return []Strategy{
		DefaultStrategy{},
		UserWithIDStrategy{},
		GradualRolloutUserIDStrategy{},
		GradualRolloutSessionIDStrategy{},
		GradualRolloutRandomStrategy{},
		FlexibleRolloutStrategy{},
		RemoteAddressStrategy{},
		NewApplicationHostnameStrategy(),
	}
}

// NewRegistry creates a registry containing the built-in strategies plus the given custom strategies.
// A custom strategy whose name matches a built-in one takes its place; nil entries are ignored.
func NewRegistry(custom ...Strategy) *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}
	for _, s := range Builtins() {
		r.strategies[s.Name()] = s
	}
	for _, s := range custom {
		if s != nil {
			r.strategies[s.Name()] = s
		}
	}
	return r
}

// Lookup returns the strategy registered under name.
func (r *Registry) Lookup(name string) (Strategy, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.strategies[name]
	return s, ok
}
