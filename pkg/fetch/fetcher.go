package fetch

import (
	"context"
	"time"

	"github.com/lance6716/plan-diff/pkg/query"
	"github.com/lance6716/plan-diff/pkg/target"
	"github.com/lance6716/plan-diff/pkg/util"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
)

// TimeoutMessage is the error detail of a PlanResult whose EXPLAIN does not
// finish in time.
const TimeoutMessage = "timeout"

// Fetcher gets the plan of one query from one target.
type Fetcher struct {
	metrics *Metrics
}

// NewFetcher creates a Fetcher. metrics can be nil.
func NewFetcher(metrics *Metrics) *Fetcher {
	return &Fetcher{metrics: metrics}
}

// Fetch runs EXPLAIN of q on t, bounded by timeout. Failures of the EXPLAIN are
// recorded in the returned PlanResult. The returned error is only non-nil when
// ctx is done, in which case the PlanResult should be discarded.
//
// After a successful EXPLAIN, the engine version of t is detected if it's not
// known yet.
func (f *Fetcher) Fetch(
	ctx context.Context,
	t *target.ConnectionTarget,
	q query.BenchmarkQuery,
	timeout time.Duration,
) (PlanResult, error) {
	if err := ctx.Err(); err != nil {
		return PlanResult{}, errors.Trace(err)
	}

	fetchCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		fetchCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	start := time.Now()
	plan, err := t.Exec.Explain(fetchCtx, q.SQL)
	elapsed := time.Since(start)
	timedOut := fetchCtx.Err() == context.DeadlineExceeded
	cancel()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return PlanResult{}, errors.Trace(ctxErr)
	}

	logger := util.Logger.With(
		zap.Int("query", q.Index),
		zap.String("target", t.Label),
		zap.Duration("elapsed", elapsed),
	)
	switch {
	case err == nil:
		logger.Debug("fetched plan")
		f.metrics.observe(t.Label, OutcomeSuccess, elapsed)
		f.detectVersion(ctx, t, timeout)
		return newSuccess(q.Index, t.Label, plan, elapsed), nil
	case timedOut:
		// the driver may return a bit earlier than the deadline
		elapsed = max(elapsed, timeout)
		logger.Warn("EXPLAIN timeout", zap.Error(util.ErrTimeout.GenWithStackByArgs()))
		f.metrics.observe(t.Label, OutcomeTimeout, elapsed)
		return newFailure(q.Index, t.Label, TimeoutMessage, elapsed), nil
	case util.IsConnectionError(err):
		logger.Warn("lost connection to target", zap.Error(err))
		f.metrics.observe(t.Label, OutcomeError, elapsed)
		return newFailure(q.Index, t.Label, errors.Cause(err).Error(), elapsed), nil
	default:
		logger.Info("EXPLAIN failed", zap.Error(err))
		f.metrics.observe(t.Label, OutcomeError, elapsed)
		return newFailure(q.Index, t.Label, errors.Cause(err).Error(), elapsed), nil
	}
}

// detectVersion runs the version query of t and stores the parsed result. A
// failure is only logged, the next successful fetch will try again.
func (f *Fetcher) detectVersion(ctx context.Context, t *target.ConnectionTarget, timeout time.Duration) {
	if t.Version() != nil {
		return
	}
	versionCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		versionCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	raw, err := t.Exec.Version(versionCtx)
	if err != nil {
		util.Logger.Warn("failed to query version",
			zap.String("target", t.Label), zap.Error(err))
		return
	}
	v, err := target.ParseVersion(raw)
	if err != nil {
		util.Logger.Warn("failed to parse version",
			zap.String("target", t.Label), zap.Error(err))
		return
	}
	if t.SetVersion(v) {
		util.Logger.Info("detected version",
			zap.String("target", t.Label), zap.Stringer("version", v))
	}
}
