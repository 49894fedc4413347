// Package report aggregates the comparison outcomes and renders them.
package report

import (
	"slices"
	"time"

	"github.com/lance6716/plan-diff/pkg/compare"
	"github.com/lance6716/plan-diff/pkg/target"
	"github.com/lance6716/plan-diff/pkg/util"
)

const defaultTitle = "Explain Plan Comparison Report"

// TargetInfo is the display information of a target. It never contains
// credentials.
type TargetInfo struct {
	Label     string `json:"label"`
	DSN       string `json:"dsn"`
	Host      string `json:"host,omitempty"`
	Database  string `json:"database,omitempty"`
	Warehouse string `json:"warehouse,omitempty"`
	// Version is empty if it's not detected.
	Version    string `json:"version,omitempty"`
	RawVersion string `json:"raw_version,omitempty"`
}

// NewTargetInfo collects the display information of t.
func NewTargetInfo(t *target.ConnectionTarget) TargetInfo {
	info := t.Info()
	ret := TargetInfo{
		Label:     t.Label,
		DSN:       t.MaskedDSN(),
		Host:      info.Host,
		Database:  info.Database,
		Warehouse: info.Warehouse,
	}
	if v := t.Version(); v != nil {
		ret.Version = v.String()
		ret.RawVersion = v.Raw
	}
	return ret
}

// Counts is the number of outcomes per classification.
type Counts struct {
	Identical   int `json:"identical"`
	Similar     int `json:"similar"`
	Different   int `json:"different"`
	ErroredOne  int `json:"errored_one"`
	ErroredBoth int `json:"errored_both"`
}

// Errored is the number of outcomes with any side failed.
func (c Counts) Errored() int {
	return c.ErroredOne + c.ErroredBoth
}

func (c *Counts) add(cls compare.Classification) {
	switch cls {
	case compare.Identical:
		c.Identical++
	case compare.Similar:
		c.Similar++
	case compare.Different:
		c.Different++
	case compare.ErroredOne:
		c.ErroredOne++
	case compare.ErroredBoth:
		c.ErroredBoth++
	}
}

// ReportModel is everything the report shows. Renderers only read it.
type ReportModel struct {
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	SQLFile     string    `json:"sql_file,omitempty"`

	Old       TargetInfo  `json:"old"`
	New       TargetInfo  `json:"new"`
	Reference *TargetInfo `json:"reference,omitempty"`

	// Outcomes are ordered by query index.
	Outcomes []compare.ComparisonOutcome `json:"outcomes"`
	Counts   Counts                      `json:"counts"`
	// Total is the number of outcomes.
	Total             int     `json:"total"`
	AverageSimilarity float64 `json:"average_similarity"`

	// Loaded is the number of queries in the query set. It's larger than
	// Total only when the run is interrupted, and Partial is set.
	Loaded  int  `json:"loaded"`
	Partial bool `json:"partial"`
}

// Options is the optional information of a report.
type Options struct {
	Title   string
	SQLFile string
	// Reference is the target whose plans are shown beside but not compared.
	Reference *target.ConnectionTarget
	// Loaded is the number of queries in the query set. 0 means the same as
	// the number of outcomes.
	Loaded int
	// Now is used for the generation time, defaults to time.Now.
	Now func() time.Time
}

// Build aggregates outcomes into a ReportModel. It returns
// util.ErrValidation if outcomes is empty.
func Build(
	outcomes []compare.ComparisonOutcome,
	oldTarget, newTarget *target.ConnectionTarget,
	opts Options,
) (*ReportModel, error) {
	if len(outcomes) == 0 {
		return nil, util.ErrValidation.GenWithStackByArgs("no comparison outcome to report")
	}
	if opts.Title == "" {
		opts.Title = defaultTitle
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sorted := slices.Clone(outcomes)
	slices.SortStableFunc(sorted, func(a, b compare.ComparisonOutcome) int {
		return a.QueryIndex - b.QueryIndex
	})

	m := &ReportModel{
		Title:       opts.Title,
		GeneratedAt: opts.Now(),
		SQLFile:     opts.SQLFile,
		Old:         NewTargetInfo(oldTarget),
		New:         NewTargetInfo(newTarget),
		Outcomes:    sorted,
		Total:       len(sorted),
		Loaded:      max(opts.Loaded, len(sorted)),
	}
	if opts.Reference != nil {
		ref := NewTargetInfo(opts.Reference)
		m.Reference = &ref
	}
	m.Partial = m.Loaded > m.Total

	var sum float64
	for _, o := range sorted {
		m.Counts.add(o.Classification)
		sum += o.Similarity
	}
	m.AverageSimilarity = sum / float64(m.Total)
	return m, nil
}
