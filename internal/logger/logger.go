package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu            sync.RWMutex
	defaultLogger *zap.Logger
	sugared       *zap.SugaredLogger
)

// Config holds logger settings.
type Config struct {
	Level      string // debug, info, warn, error
	Encoding   string // json or console
	OutputPath string // stdout when empty
}

// New builds a zap.Logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	lvl := strings.ToLower(cfg.Level)
	if lvl == "" {
		lvl = "info"
	}
	if err := level.UnmarshalText([]byte(lvl)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, using info: %v\n", cfg.Level, err)
		level.SetLevel(zap.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoding := strings.ToLower(cfg.Encoding)
	if encoding != "console" && encoding != "json" {
		encoding = "json"
	}

	out := cfg.OutputPath
	if out == "" {
		out = "stdout"
	}

	zcfg := zap.Config{
		Level:             level,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{out},
		ErrorOutputPaths:  []string{"stderr"},
	}

	l, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}

// Init initializes the global logger
func Init(cfg Config) {
	l, err := New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed, falling back to production defaults: %v\n", err)
		l, _ = zap.NewProduction()
	}
	Set(l)
}

// Set replaces the global logger. Tests use it with zaptest or zap.NewNop.
func Set(l *zap.Logger) {
	mu.Lock()
	defaultLogger = l
	sugared = l.Sugar()
	mu.Unlock()
	zap.ReplaceGlobals(l)
}

// Get returns the default logger
func Get() *zap.Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l == nil {
		Init(Config{})
		return Get()
	}
	return l
}

func sugar() *zap.SugaredLogger {
	mu.RLock()
	s := sugared
	mu.RUnlock()
	if s == nil {
		return Get().Sugar()
	}
	return s
}

// Named returns a child logger for a component.
func Named(name string) *zap.Logger {
	return Get().Named(name)
}

// Info logs at info level. args are key/value pairs.
func Info(msg string, args ...any) {
	sugar().Infow(msg, args...)
}

func Debug(msg string, args ...any) {
	sugar().Debugw(msg, args...)
}

func Warn(msg string, args ...any) {
	sugar().Warnw(msg, args...)
}

func Error(msg string, args ...any) {
	sugar().Errorw(msg, args...)
}

// Fatal logs at error level and exits
func Fatal(msg string, args ...any) {
	sugar().Errorw(msg, args...)
	_ = Get().Sync()
	os.Exit(1)
}

// With returns a logger with the given key/value pairs attached
func With(args ...any) *zap.SugaredLogger {
	return sugar().With(args...)
}

// Sync flushes buffered entries.
func Sync() {
	_ = Get().Sync()
}
