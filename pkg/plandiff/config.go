package plandiff

import (
	"strings"
	"time"

	"github.com/lance6716/plan-diff/pkg/target"
	"github.com/lance6716/plan-diff/pkg/util"
)

// Config is a static struct for plan-diff's configuration. It can be loaded
// from a YAML file and PLAN_DIFF_* environment variables, and command-line
// flags take precedence over both.
type Config struct {
	Title string `yaml:"title" env:"PLAN_DIFF_TITLE" env-description:"title of the report"`

	SQLFile string `yaml:"sql-file" env:"PLAN_DIFF_SQL_FILE" env-description:"SQL file of the benchmark queries"`

	OldDSN       string `yaml:"old-dsn" env:"PLAN_DIFF_OLD_DSN" env-description:"DSN of the old target"`
	NewDSN       string `yaml:"new-dsn" env:"PLAN_DIFF_NEW_DSN" env-description:"DSN of the new target"`
	ReferenceDSN string `yaml:"reference-dsn" env:"PLAN_DIFF_REFERENCE_DSN" env-description:"DSN of the reference target, whose plans are shown but not compared"`
	// SkipReference disables the reference target even if ReferenceDSN is set.
	SkipReference bool `yaml:"skip-reference" env:"PLAN_DIFF_SKIP_REFERENCE" env-description:"skip the reference target"`

	ClientCommand string `yaml:"client-command" env:"PLAN_DIFF_CLIENT_COMMAND" env-description:"command-line client used for every target, like bendsql"`
	ClientDSNEnv  string `yaml:"client-dsn-env" env:"PLAN_DIFF_CLIENT_DSN_ENV" env-description:"environment variable passing the DSN to the client"`

	// TimeoutSeconds bounds each EXPLAIN.
	TimeoutSeconds int `yaml:"timeout" env:"PLAN_DIFF_TIMEOUT" env-description:"timeout of each EXPLAIN in seconds"`
	Concurrency    int `yaml:"concurrency" env:"PLAN_DIFF_CONCURRENCY" env-description:"max number of EXPLAIN in flight"`

	Output      string `yaml:"output" env:"PLAN_DIFF_OUTPUT" env-description:"path of the HTML report"`
	WorkDir     string `yaml:"work-dir" env:"PLAN_DIFF_WORK_DIR" env-description:"directory of raw plans and report.json"`
	MetricsFile string `yaml:"metrics-file" env:"PLAN_DIFF_METRICS_FILE" env-description:"path of the Prometheus text file of fetch metrics"`

	Log Log `yaml:"log"`
}

// Log is the logging configuration.
type Log struct {
	Verbose  bool   `yaml:"verbose" env:"PLAN_DIFF_VERBOSE" env-description:"print debug logs"`
	Filename string `yaml:"file" env:"PLAN_DIFF_LOG_FILE" env-description:"write logs to this file"`
}

// Defaults of the optional fields.
const (
	DefaultOutput         = "plan_diff_report.html"
	DefaultTimeoutSeconds = 60
	DefaultConcurrency    = 1
)

func (c *Config) ensureDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
}

// Validate checks the required fields and value ranges. It returns
// util.ErrValidation.
func (c *Config) Validate() error {
	var problems []string
	if c.SQLFile == "" {
		problems = append(problems, "SQL file is required")
	}
	if c.OldDSN == "" {
		problems = append(problems, "old DSN is required")
	}
	if c.NewDSN == "" {
		problems = append(problems, "new DSN is required")
	}
	if c.TimeoutSeconds < 0 {
		problems = append(problems, "timeout must not be negative")
	}
	if c.Concurrency < 0 {
		problems = append(problems, "concurrency must not be negative")
	}
	if len(problems) > 0 {
		return util.ErrValidation.GenWithStackByArgs(strings.Join(problems, ", "))
	}
	return nil
}

// Timeout returns the timeout of each EXPLAIN.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// UseReference returns true if the reference target is queried.
func (c *Config) UseReference() bool {
	return !c.SkipReference && c.ReferenceDSN != ""
}

func (c *Config) targetOptions() target.Options {
	return target.Options{ClientCommand: c.ClientCommand, ClientDSNEnv: c.ClientDSNEnv}
}
