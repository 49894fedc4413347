package cmd

import (
	"context"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/lance6716/plan-diff/pkg/plandiff"
	"github.com/lance6716/plan-diff/pkg/util"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "plan-diff",
		Short: "A tool used to compare the EXPLAIN plans of a query set between two databases",
		Long: `plan-diff runs EXPLAIN of every query in a SQL file on the old and the new
target, scores how similar each pair of plans is, and writes an HTML report.

Settings are read from the YAML file given by --config, then from PLAN_DIFF_*
environment variables, then from the command-line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err = util.InitLogger(cfg.Log.Verbose, cfg.Log.Filename); err != nil {
				return err
			}
			_, err = plandiff.Run(cmd.Context(), cfg)
			return err
		},
	}
)

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

var (
	configFile string
	flagCfg    plandiff.Config
)

func init() {
	cobra.OnInitialize()

	if desc, err := cleanenv.GetDescription(&plandiff.Config{}, nil); err == nil {
		rootCmd.Long += "\n\n" + desc
	}

	f := rootCmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "YAML config file")
	f.StringVar(&flagCfg.Title, "title", "", "title of the report")
	f.StringVarP(&flagCfg.SQLFile, "sql-file", "f", "", "SQL file of the benchmark queries")
	f.StringVar(&flagCfg.OldDSN, "old-dsn", "", "DSN of the old target")
	f.StringVar(&flagCfg.NewDSN, "new-dsn", "", "DSN of the new target")
	f.StringVar(&flagCfg.ReferenceDSN, "reference-dsn", "", "DSN of the reference target, whose plans are shown but not compared")
	f.BoolVar(&flagCfg.SkipReference, "skip-reference", false, "skip the reference target")
	f.StringVar(&flagCfg.ClientCommand, "client-command", "", "command-line client used for every target, like bendsql")
	f.StringVar(&flagCfg.ClientDSNEnv, "client-dsn-env", "", "environment variable passing the DSN to the client (default BENDSQL_DSN)")
	f.IntVar(&flagCfg.TimeoutSeconds, "timeout", plandiff.DefaultTimeoutSeconds, "timeout of each EXPLAIN in seconds")
	f.IntVar(&flagCfg.Concurrency, "concurrency", plandiff.DefaultConcurrency, "max number of EXPLAIN in flight")
	f.StringVarP(&flagCfg.Output, "output", "o", plandiff.DefaultOutput, "path of the HTML report")
	f.StringVarP(&flagCfg.WorkDir, "work-dir", "w", "", "directory of raw plans and report.json")
	f.StringVar(&flagCfg.MetricsFile, "metrics-file", "", "path of the Prometheus text file of fetch metrics")
	f.BoolVarP(&flagCfg.Log.Verbose, "verbose", "v", false, "print debug logs")
	f.StringVar(&flagCfg.Log.Filename, "log-file", "", "write logs to this file")
}

// loadConfig reads the config file or the environment variables, and then
// applies the flags set in the command line.
func loadConfig(cmd *cobra.Command) (*plandiff.Config, error) {
	cfg := &plandiff.Config{}
	if configFile != "" {
		if err := cleanenv.ReadConfig(configFile, cfg); err != nil {
			return nil, util.ErrValidation.GenWithStackByArgs("config file " + configFile + ": " + err.Error())
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, util.ErrValidation.GenWithStackByArgs("environment variables: " + err.Error())
	}

	overrides := []struct {
		flag  string
		apply func()
	}{
		{"title", func() { cfg.Title = flagCfg.Title }},
		{"sql-file", func() { cfg.SQLFile = flagCfg.SQLFile }},
		{"old-dsn", func() { cfg.OldDSN = flagCfg.OldDSN }},
		{"new-dsn", func() { cfg.NewDSN = flagCfg.NewDSN }},
		{"reference-dsn", func() { cfg.ReferenceDSN = flagCfg.ReferenceDSN }},
		{"skip-reference", func() { cfg.SkipReference = flagCfg.SkipReference }},
		{"client-command", func() { cfg.ClientCommand = flagCfg.ClientCommand }},
		{"client-dsn-env", func() { cfg.ClientDSNEnv = flagCfg.ClientDSNEnv }},
		{"timeout", func() { cfg.TimeoutSeconds = flagCfg.TimeoutSeconds }},
		{"concurrency", func() { cfg.Concurrency = flagCfg.Concurrency }},
		{"output", func() { cfg.Output = flagCfg.Output }},
		{"work-dir", func() { cfg.WorkDir = flagCfg.WorkDir }},
		{"metrics-file", func() { cfg.MetricsFile = flagCfg.MetricsFile }},
		{"verbose", func() { cfg.Log.Verbose = flagCfg.Log.Verbose }},
		{"log-file", func() { cfg.Log.Filename = flagCfg.Log.Filename }},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			o.apply()
		}
	}
	return cfg, nil
}
