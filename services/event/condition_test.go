package event

import (
	"testing"

	"github.com/stretchr/testify/require"

	"promo-eventserver/pkg/errutil"
)

func TestCondition_SatisfiedOperators(t *testing.T) {
	tests := []struct {
		name     string
		operator Operator
		metric   float64
		value    float64
		want     bool
	}{
		{"eq match", OpEq, 10, 10, true},
		{"eq miss", OpEq, 10, 11, false},
		{"neq match", OpNeq, 10, 11, true},
		{"neq miss", OpNeq, 10, 10, false},
		{"gte equal", OpGte, 10, 10, true},
		{"gte above", OpGte, 11, 10, true},
		{"gte below", OpGte, 9, 10, false},
		{"gt above", OpGt, 11, 10, true},
		{"gt equal", OpGt, 10, 10, false},
		{"lte equal", OpLte, 10, 10, true},
		{"lte above", OpLte, 11, 10, false},
		{"lt below", OpLt, 9, 10, true},
		{"lt equal", OpLt, 10, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := Condition{Expressions: []Expression{
				{Operator: tt.operator, Metric: "level", Value: tt.value},
			}}

			got, err := cond.Satisfied(map[string]float64{"level": tt.metric})
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCondition_EmptyExpressionsSatisfied(t *testing.T) {
	ok, err := Condition{}.Satisfied(map[string]float64{})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCondition_MissingMetricFails(t *testing.T) {
	cond := Condition{Expressions: []Expression{
		{Operator: OpGte, Metric: "level", Value: 1},
	}}

	ok, err := cond.Satisfied(map[string]float64{"login_count": 5})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCondition_AllExpressionsMustHold(t *testing.T) {
	cond := Condition{Expressions: []Expression{
		{Operator: OpGte, Metric: "level", Value: 30},
		{Operator: OpGte, Metric: "login_count", Value: 7},
	}}

	ok, err := cond.Satisfied(map[string]float64{"level": 50, "login_count": 3})
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = cond.Satisfied(map[string]float64{"level": 50, "login_count": 7})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCondition_UnknownOperator(t *testing.T) {
	cond := Condition{Expressions: []Expression{
		{Operator: "between", Metric: "level", Value: 10},
	}}

	_, err := cond.Satisfied(map[string]float64{"level": 10})
	require.Error(t, err)
	require.True(t, errutil.ReasonIs(err, reasonUnknownOperator))

	require.Error(t, cond.Validate())
}

func TestCondition_ValidateAcceptsKnownOperators(t *testing.T) {
	cond := Condition{Expressions: []Expression{
		{Operator: OpEq, Metric: "a", Value: 1},
		{Operator: OpNeq, Metric: "b", Value: 1},
		{Operator: OpGte, Metric: "c", Value: 1},
		{Operator: OpGt, Metric: "d", Value: 1},
		{Operator: OpLte, Metric: "e", Value: 1},
		{Operator: OpLt, Metric: "f", Value: 1},
	}}
	require.NoError(t, cond.Validate())
}
