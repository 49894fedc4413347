// Package fetch runs EXPLAIN of the benchmark queries on the targets.
package fetch

import "time"

// PlanResult is the outcome of one EXPLAIN of one query on one target. Exactly
// one of Plan and Err is set.
type PlanResult struct {
	QueryIndex int           `json:"query_index"`
	Label      string        `json:"label"`
	Plan       *string       `json:"plan"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	Err        *string       `json:"error"`
}

// OK returns true if the plan is fetched.
func (r PlanResult) OK() bool {
	return r.Err == nil && r.Plan != nil
}

// PlanText returns the plan, or an empty string on failure.
func (r PlanResult) PlanText() string {
	if r.Plan == nil {
		return ""
	}
	return *r.Plan
}

// ErrText returns the error detail, or an empty string on success.
func (r PlanResult) ErrText() string {
	if r.Err == nil {
		return ""
	}
	return *r.Err
}

func newSuccess(index int, label, plan string, elapsed time.Duration) PlanResult {
	return PlanResult{QueryIndex: index, Label: label, Plan: &plan, Elapsed: elapsed}
}

func newFailure(index int, label, msg string, elapsed time.Duration) PlanResult {
	return PlanResult{QueryIndex: index, Label: label, Err: &msg, Elapsed: elapsed}
}
