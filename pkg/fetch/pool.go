package fetch

import (
	"context"
	"time"

	"github.com/lance6716/plan-diff/pkg/query"
	"github.com/lance6716/plan-diff/pkg/target"
	"github.com/lance6716/plan-diff/pkg/util"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// QueryResults is the plans of one query, in the order of Pool.Targets. The
// reference plan may be missing when the run is interrupted.
type QueryResults struct {
	Query   query.BenchmarkQuery
	Results []PlanResult
}

// Get returns the PlanResult of the target with given label.
func (r QueryResults) Get(label string) (PlanResult, bool) {
	for _, res := range r.Results {
		if res.Label == label {
			return res, true
		}
	}
	return PlanResult{}, false
}

// Pool fetches the plans of a query set from several targets.
type Pool struct {
	Fetcher *Fetcher
	Targets []*target.ConnectionTarget
	Timeout time.Duration
	// Concurrency is the max number of EXPLAIN in flight. 1 runs them one by
	// one in the order of queries then targets.
	Concurrency int
}

// FetchAll fetches every query from every target. The results are in the order
// of queries regardless of the completion order.
//
// If ctx is done before all fetches finish, it returns the queries whose old
// and new plans are fetched together with the error of ctx.
func (p *Pool) FetchAll(ctx context.Context, queries []query.BenchmarkQuery) ([]QueryResults, error) {
	concurrency := max(p.Concurrency, 1)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	// every goroutine writes its own slot
	slots := make([][]*PlanResult, len(queries))
	for i := range slots {
		slots[i] = make([]*PlanResult, len(p.Targets))
	}

	util.Logger.Info("start fetching plans",
		zap.Int("queries", len(queries)),
		zap.Int("targets", len(p.Targets)),
		zap.Int("concurrency", concurrency))

loop:
	for i, q := range queries {
		for j, t := range p.Targets {
			if gCtx.Err() != nil {
				break loop
			}
			g.Go(func() error {
				res, err := p.Fetcher.Fetch(gCtx, t, q, p.Timeout)
				if err != nil {
					return err
				}
				slots[i][j] = &res
				return nil
			})
		}
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	ret := make([]QueryResults, 0, len(queries))
	for i, q := range queries {
		complete := true
		results := make([]PlanResult, 0, len(p.Targets))
		for j, res := range slots[i] {
			if res == nil {
				// the reference plan is only displayed
				if p.Targets[j].Label == target.LabelReference {
					continue
				}
				complete = false
				break
			}
			results = append(results, *res)
		}
		if complete {
			ret = append(ret, QueryResults{Query: q, Results: results})
		}
	}

	if err != nil {
		util.Logger.Warn("fetching is interrupted",
			zap.Int("finished", len(ret)),
			zap.Int("total", len(queries)),
			zap.Error(err))
		return ret, errors.Trace(err)
	}
	util.Logger.Info("finished fetching plans", zap.Int("queries", len(ret)))
	return ret, nil
}
