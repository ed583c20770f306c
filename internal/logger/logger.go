package logger

import (
	"os"

	"github.com/aira-hq/hubclient/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// Logger is the structured logging surface shared by the app packages.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

// ZapLogger implements Logger on top of a zap logger.
type ZapLogger struct {
	z *zap.Logger
}

// Sugar exposes the printf-style logger, e.g. for resty.
func (l *ZapLogger) Sugar() *zap.SugaredLogger { return l.z.Sugar() }

func (l *ZapLogger) InfoObj(msg, key string, obj interface{})  { l.z.Info(msg, zap.Any(key, obj)) }
func (l *ZapLogger) DebugObj(msg, key string, obj interface{}) { l.z.Debug(msg, zap.Any(key, obj)) }
func (l *ZapLogger) WarnObj(msg, key string, obj interface{})  { l.z.Warn(msg, zap.Any(key, obj)) }
func (l *ZapLogger) ErrorObj(msg, key string, obj interface{}) { l.z.Error(msg, zap.Any(key, obj)) }

// Init initializes the zap logger using settings from config.
// Logs go to stderr so command output on stdout stays machine readable.
func Init(cfg *config.Config) (*ZapLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stderr)),
		parseLevel(cfg.LogLevel),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	S = logger.Sugar()
	return &ZapLogger{z: logger}, nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

// Minimal object logging helpers -------------------------------------------------
// These log the given object as a structured field named `key` on the
// package-level logger and are no-ops before Init.
func InfoObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Info(msg, zap.Any(key, obj))
}

func DebugObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Debug(msg, zap.Any(key, obj))
}

func WarnObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Warn(msg, zap.Any(key, obj))
}

func ErrorObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Error(msg, zap.Any(key, obj))
}
