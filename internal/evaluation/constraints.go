package evaluation

import (
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/toggleworks/unleash-client-go/model"
)

// MatchConstraints reports whether every constraint holds. An empty list holds.
func (e *Evaluator) MatchConstraints(constraints []model.Constraint, ctx model.Context) bool {
	for _, c := range constraints {
		if !e.MatchConstraint(c, ctx) {
			return false
		}
	}
	return true
}

// MatchConstraint evaluates one constraint. Unparseable values never match, and a constraint with
// an operator this client does not know never matches whether or not it is inverted.
func (e *Evaluator) MatchConstraint(c model.Constraint, ctx model.Context) bool {
	var result bool
	switch c.Operator {
	case model.OperatorIn, model.OperatorNotIn:
		value, ok := ctx.Field(c.ContextName)
		result = ok && containsString(listOperands(c), value)
		if c.Operator == model.OperatorNotIn {
			result = !result
		}
	case model.OperatorStrContains, model.OperatorStrStartsWith, model.OperatorStrEndsWith:
		result = matchString(c, ctx)
	case model.OperatorNumEq, model.OperatorNumGt, model.OperatorNumGte, model.OperatorNumLt, model.OperatorNumLte:
		result = matchNumber(c, ctx)
	case model.OperatorSemverEq, model.OperatorSemverGt, model.OperatorSemverLt:
		result = matchSemver(c, ctx)
	case model.OperatorDateAfter, model.OperatorDateBefore:
		result = e.matchDate(c, ctx)
	default:
		e.warnUnknownOperator(c.Operator)
		return false
	}
	return result != c.Inverted
}

func (e *Evaluator) warnUnknownOperator(op model.Operator) {
	if _, seen := e.unknownOperators.LoadOrStore(op, struct{}{}); !seen {
		e.loggers.Warnf("Unknown constraint operator %q; constraints using it will not match", op)
	}
}

// listOperands returns the operands of a multi-valued operator. A lone value is accepted too.
func listOperands(c model.Constraint) []string {
	if len(c.Values) > 0 {
		return c.Values
	}
	return c.Operands()
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func matchString(c model.Constraint, ctx model.Context) bool {
	value, ok := ctx.Field(c.ContextName)
	if !ok {
		return false
	}
	if c.CaseInsensitive {
		value = strings.ToLower(value)
	}
	var test func(s, substr string) bool
	switch c.Operator {
	case model.OperatorStrContains:
		test = strings.Contains
	case model.OperatorStrStartsWith:
		test = strings.HasPrefix
	default:
		test = strings.HasSuffix
	}
	for _, operand := range listOperands(c) {
		if c.CaseInsensitive {
			operand = strings.ToLower(operand)
		}
		if test(value, operand) {
			return true
		}
	}
	return false
}

func matchNumber(c model.Constraint, ctx model.Context) bool {
	raw, ok := ctx.Field(c.ContextName)
	if !ok {
		return false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return false
	}
	for _, operandText := range c.Operands() {
		operand, err := strconv.ParseFloat(strings.TrimSpace(operandText), 64)
		if err != nil {
			continue
		}
		var hit bool
		switch c.Operator {
		case model.OperatorNumEq:
			hit = value == operand
		case model.OperatorNumGt:
			hit = value > operand
		case model.OperatorNumGte:
			hit = value >= operand
		case model.OperatorNumLt:
			hit = value < operand
		default:
			hit = value <= operand
		}
		if hit {
			return true
		}
	}
	return false
}

func matchSemver(c model.Constraint, ctx model.Context) bool {
	raw, ok := ctx.Field(c.ContextName)
	if !ok {
		return false
	}
	value, err := semver.StrictNewVersion(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	for _, operandText := range c.Operands() {
		operand, err := semver.StrictNewVersion(strings.TrimSpace(operandText))
		if err != nil {
			continue
		}
		var hit bool
		switch c.Operator {
		case model.OperatorSemverEq:
			hit = value.Equal(operand)
		case model.OperatorSemverGt:
			hit = value.GreaterThan(operand)
		default:
			hit = value.LessThan(operand)
		}
		if hit {
			return true
		}
	}
	return false
}

func (e *Evaluator) matchDate(c model.Constraint, ctx model.Context) bool {
	var value time.Time
	if c.ContextName == model.FieldCurrentTime {
		value = ctx.CurrentTime
		if value.IsZero() {
			value = e.now()
		}
	} else {
		raw, ok := ctx.Field(c.ContextName)
		if !ok {
			return false
		}
		parsed, err := parseTimestamp(raw)
		if err != nil {
			return false
		}
		value = parsed
	}
	for _, operandText := range c.Operands() {
		operand, err := parseTimestamp(operandText)
		if err != nil {
			continue
		}
		if c.Operator == model.OperatorDateAfter && value.After(operand) {
			return true
		}
		if c.Operator == model.OperatorDateBefore && value.Before(operand) {
			return true
		}
	}
	return false
}

// parseTimestamp accepts RFC 3339 timestamps, with or without fractional seconds.
func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
}
