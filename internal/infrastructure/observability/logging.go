package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig selects the logger's level and encoding.
type LoggingConfig struct {
	Level      string // debug, info, warn or error
	Format     string // json or console
	Production bool
}

// NewLogger builds the process logger. The returned AtomicLevel can change
// the level of the live logger, which is how config reloads apply.
func NewLogger(cfg LoggingConfig) (*zap.Logger, zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zcfg zap.Config
	if cfg.Production {
		zcfg = zap.NewProductionConfig()
		zcfg.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		}
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	zcfg.OutputPaths = []string{"stdout"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	switch cfg.Format {
	case "", "json":
		zcfg.Encoding = "json"
		zcfg.EncoderConfig = zap.NewProductionEncoderConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "console":
		zcfg.Encoding = "console"
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, zap.AtomicLevel{}, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	logger, err := zcfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, level, nil
}
