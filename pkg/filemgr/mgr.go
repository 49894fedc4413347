package filemgr

import (
	"path/filepath"
	"strconv"

	"github.com/lance6716/plan-diff/pkg/fetch"
	"github.com/lance6716/plan-diff/pkg/query"
	"github.com/lance6716/plan-diff/pkg/util"
	"github.com/pingcap/errors"
)

const (
	planExt        = ".txt"
	errorExt       = ".err"
	reportJSONName = "report.json"
	metricsName    = "metrics.prom"
)

// Manager owns a folder and organizes the artifacts of a run. The hierarchy is
//
//	<workDir>/
//	  report.json
//	  metrics.prom
//	  <label>/<query index>-<query name>.txt   the fetched plan
//	  <label>/<query index>-<query name>.err   the error if fetching failed
type Manager struct {
	workDir string
}

// NewManager creates a new Manager instance on the given work directory.
func NewManager(workDir string) *Manager {
	return &Manager{workDir: workDir}
}

// WorkDir returns the directory owned by m.
func (m *Manager) WorkDir() string {
	return m.workDir
}

// WritePlanResult writes the plan or the error of r. The file of the other kind
// from a previous run is left as is.
func (m *Manager) WritePlanResult(q query.BenchmarkQuery, r fetch.PlanResult) error {
	if r.OK() {
		return errors.Trace(util.AtomicWrite(m.GetPlanPath(q, r.Label), []byte(r.PlanText()+"\n")))
	}
	return errors.Trace(util.AtomicWrite(m.GetErrorPath(q, r.Label), []byte(r.ErrText()+"\n")))
}

// WriteReportJSON writes the machine-readable report.
func (m *Manager) WriteReportJSON(content []byte) error {
	return errors.Trace(util.AtomicWrite(m.GetReportJSONPath(), content))
}

// GetPlanPath returns the path of the plan file of q fetched from the target
// labelled label.
func (m *Manager) GetPlanPath(q query.BenchmarkQuery, label string) string {
	return filepath.Join(m.workDir, util.EscapePath(label), baseName(q)+planExt)
}

// GetErrorPath returns the path of the error file of q fetched from the target
// labelled label.
func (m *Manager) GetErrorPath(q query.BenchmarkQuery, label string) string {
	return filepath.Join(m.workDir, util.EscapePath(label), baseName(q)+errorExt)
}

// GetReportJSONPath returns the path of report.json.
func (m *Manager) GetReportJSONPath() string {
	return filepath.Join(m.workDir, reportJSONName)
}

// GetMetricsPath returns the path of the Prometheus text file.
func (m *Manager) GetMetricsPath() string {
	return filepath.Join(m.workDir, metricsName)
}

func baseName(q query.BenchmarkQuery) string {
	name := strconv.Itoa(q.Index)
	if q.Name != "" {
		name += "-" + util.EscapePath(q.Name)
	}
	return name
}
