package event

import (
	"promo-eventserver/pkg/errutil"
)

// Operator compares a metric snapshot value against a threshold.
type Operator string

const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpGte Operator = "gte"
	OpGt  Operator = "gt"
	OpLte Operator = "lte"
	OpLt  Operator = "lt"
)

// Expression is a single numeric comparison against one metric key.
type Expression struct {
	Operator Operator `json:"operator"`
	Metric   string   `json:"metric"`
	Value    float64  `json:"value"`
}

// Condition is the completion criteria of an event: an optional prerequisite
// event plus an AND-combined list of expressions. An empty expression list is
// trivially satisfied.
type Condition struct {
	Prev        string       `json:"prev,omitempty"`
	Expressions []Expression `json:"expressions"`
}

const reasonUnknownOperator = "CONDITION_OPERATOR_UNKNOWN"

// Satisfied evaluates the condition against a metric snapshot. It is pure
// and safe to re-evaluate any number of times.
//
// A metric key absent from the snapshot fails its expression. An unknown
// operator is corrupted event data and aborts evaluation with an internal
// error rather than silently passing or failing.
func (c Condition) Satisfied(snapshot map[string]float64) (bool, error) {
	for _, expr := range c.Expressions {
		value, ok := snapshot[expr.Metric]
		if !ok {
			return false, nil
		}

		matched, err := expr.Operator.compare(value, expr.Value)
		if err != nil {
			return false, err
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

// Validate rejects condition trees holding operators outside the supported
// set, so corrupted definitions are caught at creation rather than at
// evaluation.
func (c Condition) Validate() error {
	for _, expr := range c.Expressions {
		if _, err := expr.Operator.compare(0, 0); err != nil {
			return err
		}
	}
	return nil
}

func (op Operator) compare(value, threshold float64) (bool, error) {
	switch op {
	case OpEq:
		return value == threshold, nil
	case OpNeq:
		return value != threshold, nil
	case OpGte:
		return value >= threshold, nil
	case OpGt:
		return value > threshold, nil
	case OpLte:
		return value <= threshold, nil
	case OpLt:
		return value < threshold, nil
	default:
		return false, errutil.Internal(reasonUnknownOperator, "unknown condition operator: "+string(op))
	}
}
