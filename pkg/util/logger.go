package util

import (
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Logger *zap.Logger
	level  = zap.NewAtomicLevelAt(zap.InfoLevel)
)

func init() {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.OutputPaths = []string{"stdout"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = level
	var err error
	Logger, err = config.Build()
	if err != nil {
		panic(err)
	}
}

// InitLogger adjusts the global Logger. When verbose is true, debug messages
// are printed. When filename is not empty, logs are written to that file
// instead of stdout.
func InitLogger(verbose bool, filename string) error {
	lvl := zap.InfoLevel
	if verbose {
		lvl = zap.DebugLevel
	}
	level.SetLevel(lvl)
	if filename == "" {
		return nil
	}

	lg, props, err := log.InitLogger(&log.Config{
		Level:  lvl.String(),
		Format: "text",
		File:   log.FileLogConfig{Filename: filename},
	})
	if err != nil {
		return errors.Annotatef(err, "init logger with file %s", filename)
	}
	log.ReplaceGlobals(lg, props)
	Logger = lg
	return nil
}
