// Package logger builds the application zap logger.
package logger

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName = "seedfarm.log"
	maxSizeMB   = 50
	maxBackups  = 5
	maxAgeDays  = 14
)

// LogOption selects format, level and sink.
type LogOption struct {
	Format   string // console or json
	LogDir   string // empty writes to stderr
	Level    string // debug, info, warn, error
	Compress bool   // gzip rotated files
}

// New builds a logger from opt.
func New(opt LogOption) (*zap.Logger, error) {
	level, err := parseLevel(opt.Level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(opt.Format) {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, errors.Errorf("unknown log format %q", opt.Format)
	}

	sink, err := writer(opt)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(enc, sink, level)
	return zap.New(core, zap.AddCaller()), nil
}

// NewFileOnly is New for screens that own the terminal: without a log dir
// it discards everything.
func NewFileOnly(opt LogOption) (*zap.Logger, error) {
	if opt.LogDir == "" {
		return zap.NewNop(), nil
	}
	return New(opt)
}

func writer(opt LogOption) (zapcore.WriteSyncer, error) {
	if opt.LogDir == "" {
		return zapcore.Lock(os.Stderr), nil
	}
	if err := os.MkdirAll(opt.LogDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create log dir")
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(opt.LogDir, logFileName),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   opt.Compress,
	}), nil
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return level, errors.Wrapf(err, "invalid log level %q", s)
	}
	return level, nil
}
