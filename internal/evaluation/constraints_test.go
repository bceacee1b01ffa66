package evaluation

import (
	"testing"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"

	"github.com/stretchr/testify/assert"

	"github.com/toggleworks/unleash-client-go/model"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

func newTestEvaluator() *Evaluator {
	return NewEvaluator(Config{Loggers: ldlog.NewDisabledLoggers(), Now: func() time.Time { return fixedNow }})
}

type constraintTestCase struct {
	name       string
	constraint model.Constraint
	ctx        model.Context
	expected   bool
}

func withProps(props map[string]string) model.Context {
	return model.Context{Properties: props}
}

func runConstraintCases(t *testing.T, cases []constraintTestCase) {
	e := newTestEvaluator()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, e.MatchConstraint(c.constraint, c.ctx))

			inverted := c.constraint
			inverted.Inverted = !inverted.Inverted
			assert.Equal(t, !c.expected, e.MatchConstraint(inverted, c.ctx), "inverted")
		})
	}
}

func TestMembershipOperators(t *testing.T) {
	envIn := model.Constraint{ContextName: "environment", Operator: model.OperatorIn, Values: []string{"prod", "dev"}}
	envNotIn := envIn
	envNotIn.Operator = model.OperatorNotIn

	runConstraintCases(t, []constraintTestCase{
		{"in matches", envIn, model.Context{Environment: "prod"}, true},
		{"in no match", envIn, model.Context{Environment: "staging"}, false},
		{"in is case sensitive", envIn, model.Context{Environment: "PROD"}, false},
		{"in missing field", envIn, model.Context{}, false},
		{"not in matches", envNotIn, model.Context{Environment: "staging"}, true},
		{"not in excluded", envNotIn, model.Context{Environment: "dev"}, false},
		{"not in missing field", envNotIn, model.Context{}, true},
		{"in custom property", model.Constraint{ContextName: "plan", Operator: model.OperatorIn,
			Values: []string{"gold"}}, withProps(map[string]string{"plan": "gold"}), true},
	})
}

func TestStringOperators(t *testing.T) {
	email := func(op model.Operator, ci bool, values ...string) model.Constraint {
		return model.Constraint{ContextName: "email", Operator: op, Values: values, CaseInsensitive: ci}
	}
	ctx := withProps(map[string]string{"email": "Someone@Example.com"})

	runConstraintCases(t, []constraintTestCase{
		{"contains", email(model.OperatorStrContains, false, "xyz", "@Example"), ctx, true},
		{"contains case sensitive", email(model.OperatorStrContains, false, "@example"), ctx, false},
		{"contains case insensitive", email(model.OperatorStrContains, true, "@EXAMPLE"), ctx, true},
		{"starts with", email(model.OperatorStrStartsWith, false, "Some"), ctx, true},
		{"starts with no match", email(model.OperatorStrStartsWith, false, "some"), ctx, false},
		{"starts with case insensitive", email(model.OperatorStrStartsWith, true, "SOME"), ctx, true},
		{"ends with", email(model.OperatorStrEndsWith, false, ".org", ".com"), ctx, true},
		{"ends with case insensitive", email(model.OperatorStrEndsWith, true, "EXAMPLE.COM"), ctx, true},
		{"missing field", email(model.OperatorStrContains, false, ""), model.Context{}, false},
		{"no operands", email(model.OperatorStrContains, false), ctx, false},
	})
}

func TestNumericOperators(t *testing.T) {
	num := func(op model.Operator, value string) model.Constraint {
		return model.Constraint{ContextName: "age", Operator: op, Value: value}
	}
	ctx := withProps(map[string]string{"age": "42"})

	runConstraintCases(t, []constraintTestCase{
		{"eq", num(model.OperatorNumEq, "42.0"), ctx, true},
		{"eq no match", num(model.OperatorNumEq, "41"), ctx, false},
		{"gt", num(model.OperatorNumGt, "41.5"), ctx, true},
		{"gt equal", num(model.OperatorNumGt, "42"), ctx, false},
		{"gte equal", num(model.OperatorNumGte, "42"), ctx, true},
		{"lt", num(model.OperatorNumLt, "100"), ctx, true},
		{"lt equal", num(model.OperatorNumLt, "42"), ctx, false},
		{"lte equal", num(model.OperatorNumLte, "42"), ctx, true},
		{"unparseable operand", num(model.OperatorNumEq, "forty-two"), ctx, false},
		{"unparseable field", num(model.OperatorNumEq, "42"), withProps(map[string]string{"age": "old"}), false},
		{"missing field", num(model.OperatorNumEq, "42"), model.Context{}, false},
		{"values list", model.Constraint{ContextName: "age", Operator: model.OperatorNumGt,
			Values: []string{"50", "40"}}, ctx, true},
	})
}

func TestSemverOperators(t *testing.T) {
	ver := func(op model.Operator, value string) model.Constraint {
		return model.Constraint{ContextName: "version", Operator: op, Value: value}
	}
	ctx := withProps(map[string]string{"version": "1.2.3"})

	runConstraintCases(t, []constraintTestCase{
		{"eq", ver(model.OperatorSemverEq, "1.2.3"), ctx, true},
		{"eq no match", ver(model.OperatorSemverEq, "1.2.4"), ctx, false},
		{"gt", ver(model.OperatorSemverGt, "1.2.2"), ctx, true},
		{"gt prerelease", ver(model.OperatorSemverGt, "1.2.3-beta.1"), ctx, true},
		{"lt", ver(model.OperatorSemverLt, "1.10.0"), ctx, true},
		{"lt no match", ver(model.OperatorSemverLt, "1.2.3"), ctx, false},
		{"invalid operand", ver(model.OperatorSemverEq, "1.2"), ctx, false},
		{"invalid field", ver(model.OperatorSemverEq, "1.2.3"), withProps(map[string]string{"version": "v1.2.3"}), false},
		{"missing field", ver(model.OperatorSemverEq, "1.2.3"), model.Context{}, false},
	})
}

func TestDateOperators(t *testing.T) {
	date := func(op model.Operator, field, value string) model.Constraint {
		return model.Constraint{ContextName: field, Operator: op, Value: value}
	}

	runConstraintCases(t, []constraintTestCase{
		{"after uses clock", date(model.OperatorDateAfter, "currentTime", "2024-05-31T00:00:00Z"),
			model.Context{}, true},
		{"before uses clock", date(model.OperatorDateBefore, "currentTime", "2024-05-31T00:00:00.000Z"),
			model.Context{}, false},
		{"context time wins over clock", date(model.OperatorDateBefore, "currentTime", "2024-05-31T00:00:00Z"),
			model.Context{CurrentTime: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}, true},
		{"other field", date(model.OperatorDateAfter, "signup", "2023-01-01T00:00:00+02:00"),
			withProps(map[string]string{"signup": "2023-06-01T10:00:00Z"}), true},
		{"unparseable field", date(model.OperatorDateAfter, "signup", "2023-01-01T00:00:00Z"),
			withProps(map[string]string{"signup": "yesterday"}), false},
		{"missing field", date(model.OperatorDateAfter, "signup", "2023-01-01T00:00:00Z"),
			model.Context{}, false},
		{"unparseable operand", date(model.OperatorDateAfter, "currentTime", "June"), model.Context{}, false},
	})
}

func TestUnknownOperatorNeverMatchesAndIsLoggedOnce(t *testing.T) {
	mockLog := ldlogtest.NewMockLog()
	e := NewEvaluator(Config{Loggers: mockLog.Loggers})
	c := model.Constraint{ContextName: "userId", Operator: "REGEX", Values: []string{".*"}}
	ctx := model.Context{UserID: "1"}

	assert.False(t, e.MatchConstraint(c, ctx))
	c.Inverted = true
	assert.False(t, e.MatchConstraint(c, ctx))

	assert.Len(t, mockLog.GetOutput(ldlog.Warn), 1)
	mockLog.AssertMessageMatch(t, true, ldlog.Warn, `Unknown constraint operator "REGEX"`)
}

func TestMatchConstraintsIsConjunction(t *testing.T) {
	e := newTestEvaluator()
	ctx := model.Context{UserID: "1", Environment: "prod"}
	userIs1 := model.Constraint{ContextName: "userId", Operator: model.OperatorIn, Values: []string{"1"}}
	envIsDev := model.Constraint{ContextName: "environment", Operator: model.OperatorIn, Values: []string{"dev"}}

	assert.True(t, e.MatchConstraints(nil, ctx))
	assert.True(t, e.MatchConstraints([]model.Constraint{userIs1}, ctx))
	assert.False(t, e.MatchConstraints([]model.Constraint{userIs1, envIsDev}, ctx))
}
