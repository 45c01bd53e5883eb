package main

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the CLI's own logger. Boot-time output goes to the emulated
// console instead.
func newLogger(debug bool, logFormat string) (*zap.SugaredLogger, error) {
	var zapConfig zap.Config
	if logFormat == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.OutputPaths = []string{"stderr"}

	if debug {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Sugar(), nil
}

func consoleLevel(debug bool) zapcore.Level {
	if debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func (a *application) tearDown(*cli.Context) error {
	if a.log == nil {
		return nil
	}
	return syncLogger(a.log)
}

// syncLogger flushes `log`. Terminals and pipes can't be fsynced, which some
// systems report as EINVAL or ENOTTY; nothing was lost in that case.
func syncLogger(log *zap.SugaredLogger) error {
	err := log.Sync()
	if err == nil || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return fmt.Errorf("failed to flush log: %w", err)
}
