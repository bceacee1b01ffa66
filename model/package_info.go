// Package model contains the data model of feature toggles as delivered by the Unleash client API,
// together with the evaluation Context and the Variant values returned to callers.
//
// All types in this package are treated as immutable once constructed. A new set of definitions is
// produced whenever the repository receives a new feature collection; existing values are never
// modified in place, so they can be shared freely between goroutines.
package model
