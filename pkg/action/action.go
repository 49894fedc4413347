// Package action publishes the result of a run to GitHub Actions.
package action

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/sethvargo/go-githubactions"
)

// Names of the outputs, declared in action.yml.
const (
	OutputReportPath = "report-path"
	OutputSuccess    = "success"
)

// Reporter writes outputs and masks of a GitHub Actions step. Outside of
// GitHub Actions it does nothing.
type Reporter struct {
	a       *githubactions.Action
	enabled bool
}

// New creates a Reporter. opts are passed to githubactions.New, tests use them
// to replace the environment and the command writer.
func New(opts ...githubactions.Option) *Reporter {
	a := githubactions.New(opts...)
	return &Reporter{a: a, enabled: a.Getenv("GITHUB_ACTIONS") == "true"}
}

// Enabled returns true when running as a GitHub Actions step.
func (r *Reporter) Enabled() bool {
	return r.enabled
}

// MaskDSNs hides the passwords and full DSNs from the workflow log.
func (r *Reporter) MaskDSNs(dsns ...string) {
	if !r.enabled {
		return
	}
	for _, dsn := range dsns {
		if dsn == "" {
			continue
		}
		r.a.AddMask(dsn)
		if password := dsnPassword(dsn); password != "" {
			r.a.AddMask(password)
		}
	}
}

// Publish sets the outputs of the step.
func (r *Reporter) Publish(reportPath string, success bool) {
	if !r.enabled {
		return
	}
	r.a.SetOutput(OutputReportPath, reportPath)
	r.a.SetOutput(OutputSuccess, strconv.FormatBool(success))
}

func dsnPassword(dsn string) string {
	if !strings.Contains(dsn, "://") {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return ""
		}
		return cfg.Passwd
	}
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return ""
	}
	password, _ := u.User.Password()
	return password
}
