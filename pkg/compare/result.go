package compare

import (
	"github.com/lance6716/plan-diff/pkg/fetch"
	"github.com/lance6716/plan-diff/pkg/plan"
	"github.com/lance6716/plan-diff/pkg/query"
	"github.com/lance6716/plan-diff/pkg/util"
	"go.uber.org/zap"
)

// Classification is the verdict of comparing the plans of a query.
type Classification string

const (
	Identical   Classification = "identical"
	Similar     Classification = "similar"
	Different   Classification = "different"
	ErroredOne  Classification = "errored_one"
	ErroredBoth Classification = "errored_both"
)

// Classifications lists all classifications in the order of display.
var Classifications = []Classification{Identical, Similar, Different, ErroredOne, ErroredBoth}

// Thresholds of similarity.
const (
	IdenticalThreshold = 0.95
	SimilarThreshold   = 0.70
)

// Classify decides the classification from the success of both sides and the
// similarity.
func Classify(okA, okB bool, similarity float64) Classification {
	switch {
	case !okA && !okB:
		return ErroredBoth
	case !okA || !okB:
		return ErroredOne
	case similarity >= IdenticalThreshold:
		return Identical
	case similarity >= SimilarThreshold:
		return Similar
	default:
		return Different
	}
}

// ComparisonOutcome is the result of comparing the plans of one query on the
// old and the new target.
type ComparisonOutcome struct {
	QueryIndex     int                  `json:"query_index"`
	Query          query.BenchmarkQuery `json:"query"`
	Similarity     float64              `json:"similarity"`
	Classification Classification       `json:"classification"`
	Old            fetch.PlanResult     `json:"old"`
	New            fetch.PlanResult     `json:"new"`
	// Reference is the plan from the reference target, only for display.
	Reference *fetch.PlanResult `json:"reference,omitempty"`
	Diff      []DiffRow         `json:"diff,omitempty"`
	// Tree is the verdict of comparing TiDB operator trees, empty when the
	// plans are not TiDB tables. It does not affect Classification.
	Tree TreeVerdict `json:"tree,omitempty"`
}

// Compare compares the plans of the same query from two targets. Failures of
// either side are reflected in the classification, and the similarity is 0.
func Compare(a, b fetch.PlanResult) ComparisonOutcome {
	ret := ComparisonOutcome{
		QueryIndex: a.QueryIndex,
		Old:        a,
		New:        b,
	}
	okA, okB := a.OK(), b.OK()
	if okA && okB {
		linesA, linesB := Normalize(a.PlanText()), Normalize(b.PlanText())
		ret.Similarity = Similarity(linesA, linesB)
		ret.Diff = DiffLines(linesA, linesB)
	}
	ret.Classification = Classify(okA, okB, ret.Similarity)
	return ret
}

// CompareQuery is Compare with the query attached, and the operator trees
// compared when both plans are TiDB tables.
func CompareQuery(q query.BenchmarkQuery, a, b fetch.PlanResult) ComparisonOutcome {
	ret := Compare(a, b)
	ret.QueryIndex = q.Index
	ret.Query = q
	if !a.OK() || !b.OK() || !plan.IsTable(a.PlanText()) || !plan.IsTable(b.PlanText()) {
		return ret
	}

	treeA, err := plan.ParseTable(a.PlanText())
	if err == nil {
		var treeB *plan.Op
		treeB, err = plan.ParseTable(b.PlanText())
		if err == nil {
			ret.Tree, err = CmpPlan(q.SQL, treeA, treeB)
		}
	}
	if err != nil {
		util.Logger.Debug("skip comparing operator trees",
			zap.Int("query", q.Index), zap.Error(err))
	}
	return ret
}
