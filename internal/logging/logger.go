// Package logging provides the structured key/value logger used across the
// service. It wraps a zap SugaredLogger and redacts credential-like values.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the output mode and minimum level.
type Config struct {
	// Mode is "development" (console) or "production" (JSON).
	Mode  string `koanf:"mode"`
	Level string `koanf:"level"`
}

// Logger is a key/value logger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	var zc zap.Config
	switch strings.ToLower(cfg.Mode) {
	case "prod", "production":
		zc = zap.NewProductionConfig()
	default:
		zc = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}

	z, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &Logger{sugar: z.Sugar()}, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{sugar: z.Sugar()}
}

// OrNop returns l, or a discarding logger when l is nil.
func OrNop(l *Logger) *Logger {
	if l == nil {
		return Nop()
	}
	return l
}

func (l *Logger) Debug(msg string, kv ...any) { l.sugar.Debugw(msg, redact(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.sugar.Infow(msg, redact(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.sugar.Warnw(msg, redact(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.sugar.Errorw(msg, redact(kv)...) }

// With returns a child logger that always includes kv.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{sugar: l.sugar.With(redact(kv)...)}
}

// Sync flushes buffered output.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

// Zap exposes the underlying structured logger. Fields written through it
// bypass redaction.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

func redact(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if ok && isSecretKey(key) {
			out[i+1] = "[REDACTED]"
		}
	}
	return out
}

// secretKeys are field names whose values never reach the log. A key also
// matches when it ends in "_" plus one of these, as in "jwt_secret".
var secretKeys = map[string]bool{
	"api_key":       true,
	"apikey":        true,
	"access_token":  true,
	"refresh_token": true,
	"bearer_token":  true,
	"token":         true,
	"jwt":           true,
	"secret":        true,
	"password":      true,
	"authorization": true,
}

func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	if secretKeys[k] {
		return true
	}
	if i := strings.LastIndexByte(k, '_'); i >= 0 && secretKeys[k[i+1:]] {
		return true
	}
	for s := range secretKeys {
		if strings.Contains(s, "_") && strings.HasSuffix(k, "_"+s) {
			return true
		}
	}
	return false
}
