// Package evaluation is an internal package containing the rules engine: constraint matching,
// strategy activation, feature evaluation and variant bucketing. It works on a single feature
// definition at a time and knows nothing about where definitions come from.
package evaluation
