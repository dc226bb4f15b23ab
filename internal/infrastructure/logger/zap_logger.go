package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the level, encoding and sinks of a logger.
type Options struct {
	Level    string
	Encoding string // "json" (default) or "console"
	Outputs  []string
}

func NewLogger(level string) (*zap.Logger, error) {
	return New(Options{Level: level})
}

// New builds a production zap logger. Unknown levels fall back to info.
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(ParseLevel(opts.Level))
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if opts.Encoding == "console" {
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		config.Sampling = nil
	}
	if len(opts.Outputs) > 0 {
		config.OutputPaths = opts.Outputs
	}

	return config.Build()
}

func ParseLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}
