package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lance6716/plan-diff/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan-diff.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sql-file: tpch.sql
old-dsn: mysql://root@old:4000/tpch
new-dsn: mysql://root@new:4000/tpch
timeout: 30
log:
  verbose: true
`), 0o644))
	t.Setenv("PLAN_DIFF_NEW_DSN", "postgres://u@new:5432/tpch")
	t.Setenv("PLAN_DIFF_TIMEOUT", "20")

	configFile = path
	t.Cleanup(func() { configFile = "" })
	require.NoError(t, rootCmd.Flags().Set("concurrency", "4"))

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	require.Equal(t, "tpch.sql", cfg.SQLFile)
	require.Equal(t, "mysql://root@old:4000/tpch", cfg.OldDSN)
	require.Equal(t, "postgres://u@new:5432/tpch", cfg.NewDSN)
	require.Equal(t, 20, cfg.TimeoutSeconds)
	require.Equal(t, 4, cfg.Concurrency)
	require.True(t, cfg.Log.Verbose)
	// not set anywhere, filled by the defaults of Run
	require.Equal(t, "", cfg.Output)
}

func TestLoadConfigMissingFile(t *testing.T) {
	configFile = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { configFile = "" })
	_, err := loadConfig(rootCmd)
	require.True(t, util.ErrValidation.Equal(err))
}
