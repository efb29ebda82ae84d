package arp

// ConditionAlways is the condition code that fires every step. It is the
// identity value of the overlay condition array and the documented default
// for the condition lane.
const ConditionAlways = 0

// ConditionEvaluator decides whether a step with a given trigger-condition
// code fires. The per-code semantics are external to this engine: an
// implementation is an opaque evaluator keyed by an integer code and may keep
// per-condition running counters. NumCodes reports the size of the code
// enumeration; the Dice roll draws condition codes uniformly from
// [0, NumCodes).
//
// Code 0 must always fire.
type ConditionEvaluator interface {
	Evaluate(code int) bool
	NumCodes() int
}

type alwaysCondition struct{}

func (alwaysCondition) Evaluate(int) bool { return true }
func (alwaysCondition) NumCodes() int     { return 1 }

// AlwaysCondition is the evaluator used when the host supplies none.
var AlwaysCondition ConditionEvaluator = alwaysCondition{}
