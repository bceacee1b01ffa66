package model

// Operator identifies how a Constraint compares a context field with its operands.
type Operator string

// Operators understood by the constraint evaluator. Any other value is treated as never matching.
const (
	OperatorIn            Operator = "IN"
	OperatorNotIn         Operator = "NOT_IN"
	OperatorStrContains   Operator = "STR_CONTAINS"
	OperatorStrStartsWith Operator = "STR_STARTS_WITH"
	OperatorStrEndsWith   Operator = "STR_ENDS_WITH"
	OperatorNumEq         Operator = "NUM_EQ"
	OperatorNumGt         Operator = "NUM_GT"
	OperatorNumGte        Operator = "NUM_GTE"
	OperatorNumLt         Operator = "NUM_LT"
	OperatorNumLte        Operator = "NUM_LTE"
	OperatorSemverEq      Operator = "SEMVER_EQ"
	OperatorSemverGt      Operator = "SEMVER_GT"
	OperatorSemverLt      Operator = "SEMVER_LT"
	OperatorDateAfter     Operator = "DATE_AFTER"
	OperatorDateBefore    Operator = "DATE_BEFORE"
)

// FeatureDefinition is a named toggle with its activation strategies and variants.
type FeatureDefinition struct {
	Name        string
	Description string
	Project     string
	Enabled     bool
	Strategies  []ActivationStrategy
	Variants    []VariantDefinition
}

// ActivationStrategy is one rule that can activate a feature. All of its constraints must hold before
// the named strategy implementation is consulted.
type ActivationStrategy struct {
	Name        string
	Parameters  map[string]string
	Constraints []Constraint
}

// Constraint is a single predicate over a context field.
//
// Multi-valued operators (IN, NOT_IN, STR_*) compare against Values. Single-valued operators (NUM_*,
// SEMVER_*, DATE_*) use Value when it is set, and otherwise fall back to the entries of Values.
type Constraint struct {
	ContextName     string
	Operator        Operator
	Values          []string
	Value           string
	Inverted        bool
	CaseInsensitive bool
}

// Operands returns the operands used by single-valued operators.
func (c Constraint) Operands() []string {
	if c.Value != "" {
		return []string{c.Value}
	}
	return c.Values
}

// FeatureCollection is the parsed form of a client features document.
type FeatureCollection struct {
	Version  int
	Features []FeatureDefinition
}
