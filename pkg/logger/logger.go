package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin key/value facade over zap's SugaredLogger.
type Logger struct {
	s *zap.SugaredLogger
}

func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	case "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{s: z.Sugar()}, nil
}

// Nop discards everything; handy for tests and optional collaborators.
func Nop() *Logger { return &Logger{s: zap.NewNop().Sugar()} }

// FromZap wraps an existing zap logger (e.g. zaptest / observer cores).
func FromZap(z *zap.Logger) *Logger { return &Logger{s: z.Sugar()} }

func (l *Logger) Sync() { _ = l.s.Sync() }

func (l *Logger) Debug(msg string, kv ...any) { l.s.Debugw(msg, redact(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.s.Infow(msg, redact(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.s.Warnw(msg, redact(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.s.Errorw(msg, redact(kv)...) }
func (l *Logger) Fatal(msg string, kv ...any) { l.s.Fatalw(msg, redact(kv)...) }

func (l *Logger) With(kv ...any) *Logger {
	return &Logger{s: l.s.With(redact(kv)...)}
}

// Printf satisfies gorm's logger.Writer so SQL logs share the same sink.
func (l *Logger) Printf(format string, args ...any) {
	l.s.Info(fmt.Sprintf(format, args...))
}

func redact(kv []any) []any {
	if len(kv) < 2 {
		return kv
	}
	out := make([]any, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if secretKey(strings.ToLower(key)) {
			out[i+1] = "[REDACTED]"
		}
	}
	return out
}

func secretKey(k string) bool {
	for _, s := range []string{"token", "secret", "password", "api_key", "apikey", "authorization"} {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}
