// Package logger provides the process-wide sugared logger used by all
// ewf-inspect packages.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once sync.Once
	log  *zap.SugaredLogger
)

// Logger returns the shared sugared logger, initializing it on first use.
func Logger() *zap.SugaredLogger {
	once.Do(func() {
		initLogger(false)
	})
	return log
}

// SetVerbose rebuilds the shared logger, at debug level when verbose is true
// and at info level otherwise. Intended to be called
// once from the CLI before any inspection work starts.
func SetVerbose(verbose bool) {
	once.Do(func() {})
	initLogger(verbose)
}

func initLogger(verbose bool) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	zap.ReplaceGlobals(l)
	log = l.Sugar()
}
