// Package logging builds the zap loggers used by the CLI.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported encodings.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options selects the level, encoding and destination of a logger.
type Options struct {
	Level  string   // debug, info, warn, error
	Format string   // console or json
	Output []string // zap sink URLs; empty means stderr
}

// NewConfig returns the zap config for opts. Stacktraces are disabled and the
// console encoding colors its levels.
func NewConfig(opts Options) (zap.Config, error) {
	level := zap.InfoLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return zap.Config{}, fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	enc := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	switch opts.Format {
	case "", FormatConsole:
		opts.Format = FormatConsole
	case FormatJSON:
		enc.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc.EncodeDuration = zapcore.MillisDurationEncoder
	default:
		return zap.Config{}, fmt.Errorf("log format %q: must be %s or %s", opts.Format, FormatConsole, FormatJSON)
	}

	out := opts.Output
	if len(out) == 0 {
		out = []string{"stderr"}
	}
	return zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          opts.Format,
		EncoderConfig:     enc,
		DisableStacktrace: true,
		OutputPaths:       out,
		ErrorOutputPaths:  []string{"stderr"},
	}, nil
}

// New builds a named sugared logger from opts.
func New(name string, opts Options) (*zap.SugaredLogger, error) {
	cfg, err := NewConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar().Named(name), nil
}
