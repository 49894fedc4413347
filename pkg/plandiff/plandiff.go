// Package plandiff runs a whole comparison: load the queries, fetch the plans
// from the targets, compare them and write the report.
package plandiff

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lance6716/plan-diff/pkg/action"
	"github.com/lance6716/plan-diff/pkg/compare"
	"github.com/lance6716/plan-diff/pkg/fetch"
	"github.com/lance6716/plan-diff/pkg/filemgr"
	"github.com/lance6716/plan-diff/pkg/query"
	"github.com/lance6716/plan-diff/pkg/report"
	"github.com/lance6716/plan-diff/pkg/target"
	"github.com/lance6716/plan-diff/pkg/util"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OpenFunc creates the Executor of a DSN.
type OpenFunc func(ctx context.Context, dsn string, opts target.Options) (target.Executor, error)

type runner struct {
	out      io.Writer
	reporter *action.Reporter
	open     OpenFunc
	now      func() time.Time
}

// Option customizes the environment of Run.
type Option func(*runner)

// WithOutput sets the writer of the console summary, defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *runner) { r.out = w }
}

// WithReporter sets the GitHub Actions reporter.
func WithReporter(reporter *action.Reporter) Option {
	return func(r *runner) { r.reporter = reporter }
}

// WithOpenFunc replaces target.Open.
func WithOpenFunc(open OpenFunc) Option {
	return func(r *runner) { r.open = open }
}

// WithNow replaces time.Now for the generation time of the report.
func WithNow(now func() time.Time) Option {
	return func(r *runner) { r.now = now }
}

// Run is the main entry function of the plan-diff logic. It returns the report
// model when the report is written, which is also the case when ctx is
// cancelled after some queries are fetched. In that case the error of ctx is
// returned as well.
//
// Per-query failures are part of the report and do not fail the run.
func Run(ctx context.Context, cfg *Config, opts ...Option) (*report.ReportModel, error) {
	r := &runner{out: os.Stdout, open: target.Open, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.reporter == nil {
		r.reporter = action.New()
	}

	cfg.ensureDefaults()
	if err := cfg.Validate(); err != nil {
		r.reporter.Publish(absPath(cfg.Output), false)
		return nil, err
	}
	r.reporter.MaskDSNs(cfg.OldDSN, cfg.NewDSN, cfg.ReferenceDSN)

	m, err := r.run(ctx, cfg)
	r.reporter.Publish(absPath(cfg.Output), err == nil)
	return m, err
}

func (r *runner) run(ctx context.Context, cfg *Config) (*report.ReportModel, error) {
	queries, err := query.Load(cfg.SQLFile)
	if err != nil {
		return nil, err
	}
	util.Logger.Info("loaded queries",
		zap.String("file", cfg.SQLFile), zap.Int("count", len(queries)))

	targets, err := r.openTargets(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, t := range targets {
			if err2 := t.Close(); err2 != nil {
				util.Logger.Warn("failed to close target",
					zap.String("target", t.Label), zap.Error(err2))
			}
		}
	}()
	oldTarget, newTarget := targets[0], targets[1]
	var refTarget *target.ConnectionTarget
	if len(targets) > 2 {
		refTarget = targets[2]
	}

	if err = pingTargets(ctx, targets, cfg.Timeout()); err != nil {
		return nil, err
	}

	metrics := fetch.NewMetrics()
	pool := &fetch.Pool{
		Fetcher:     fetch.NewFetcher(metrics),
		Targets:     targets,
		Timeout:     cfg.Timeout(),
		Concurrency: cfg.Concurrency,
	}
	fetched, fetchErr := pool.FetchAll(ctx, queries)
	if fetchErr != nil && len(fetched) == 0 {
		return nil, fetchErr
	}

	var mgr *filemgr.Manager
	if cfg.WorkDir != "" {
		mgr = filemgr.NewManager(cfg.WorkDir)
	}

	outcomes := make([]compare.ComparisonOutcome, 0, len(fetched))
	for _, qr := range fetched {
		oldRes, _ := qr.Get(oldTarget.Label)
		newRes, _ := qr.Get(newTarget.Label)
		outcome := compare.CompareQuery(qr.Query, oldRes, newRes)
		if refTarget != nil {
			if refRes, ok := qr.Get(refTarget.Label); ok {
				outcome.Reference = &refRes
			}
		}
		util.Logger.Debug("compared plans",
			zap.Int("query", qr.Query.Index),
			zap.String("classification", string(outcome.Classification)),
			zap.Float64("similarity", outcome.Similarity))
		outcomes = append(outcomes, outcome)

		if mgr != nil {
			for _, res := range qr.Results {
				if err = mgr.WritePlanResult(qr.Query, res); err != nil {
					return nil, err
				}
			}
		}
	}

	m, err := report.Build(outcomes, oldTarget, newTarget, report.Options{
		Title:     cfg.Title,
		SQLFile:   filepath.Base(cfg.SQLFile),
		Reference: refTarget,
		Loaded:    len(queries),
		Now:       r.now,
	})
	if err != nil {
		return nil, err
	}
	if err = r.writeArtifacts(cfg, m, mgr, metrics); err != nil {
		return nil, err
	}
	if fetchErr != nil {
		return m, errors.Annotatef(fetchErr, "run interrupted after %d of %d queries", m.Total, m.Loaded)
	}
	return m, nil
}

func (r *runner) openTargets(ctx context.Context, cfg *Config) ([]*target.ConnectionTarget, error) {
	dsns := []struct{ label, dsn string }{
		{target.LabelOld, cfg.OldDSN},
		{target.LabelNew, cfg.NewDSN},
	}
	if cfg.UseReference() {
		dsns = append(dsns, struct{ label, dsn string }{target.LabelReference, cfg.ReferenceDSN})
	}

	targets := make([]*target.ConnectionTarget, 0, len(dsns))
	for _, d := range dsns {
		exec, err := r.open(ctx, d.dsn, cfg.targetOptions())
		if err != nil {
			for _, t := range targets {
				_ = t.Close()
			}
			return nil, util.ErrValidation.GenWithStackByArgs(
				d.label + " DSN " + target.MaskDSN(d.dsn) + ": " + errors.Cause(err).Error())
		}
		targets = append(targets, target.New(d.label, d.dsn, exec))
	}
	return targets, nil
}

// pingTargets checks the targets concurrently. It's only fatal when both the
// old and the new target cannot be reached, otherwise the failures show up as
// errored queries.
func pingTargets(ctx context.Context, targets []*target.ConnectionTarget, timeout time.Duration) error {
	errs := make([]error, len(targets))
	var g errgroup.Group
	for i, t := range targets {
		g.Go(func() error {
			pingCtx, cancel := ctx, context.CancelFunc(func() {})
			if timeout > 0 {
				pingCtx, cancel = context.WithTimeout(ctx, timeout)
			}
			defer cancel()
			errs[i] = t.Exec.Ping(pingCtx)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return errors.Trace(err)
	}

	for i, err := range errs {
		if err != nil {
			util.Logger.Warn("target is not reachable",
				zap.String("target", targets[i].Label),
				zap.String("dsn", targets[i].MaskedDSN()),
				zap.Error(err))
		}
	}
	if errs[0] != nil && errs[1] != nil {
		return util.ErrConnection.GenWithStackByArgs(
			"old and new", errors.Cause(errs[0]).Error()+"; "+errors.Cause(errs[1]).Error())
	}
	return nil
}

func (r *runner) writeArtifacts(
	cfg *Config,
	m *report.ReportModel,
	mgr *filemgr.Manager,
	metrics *fetch.Metrics,
) error {
	if err := report.Render(m, cfg.Output); err != nil {
		return err
	}
	util.Logger.Info("report is written", zap.String("path", cfg.Output))

	if mgr != nil {
		data, err := report.EncodeJSON(m)
		if err != nil {
			return err
		}
		if err = mgr.WriteReportJSON(data); err != nil {
			return err
		}
	}
	metricsFile := cfg.MetricsFile
	if metricsFile == "" && mgr != nil {
		metricsFile = mgr.GetMetricsPath()
	}
	if metricsFile != "" {
		if err := metrics.WriteToTextfile(metricsFile); err != nil {
			return err
		}
	}
	return report.WriteSummary(r.out, m, absPath(cfg.Output))
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
