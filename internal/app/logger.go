package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// redactedKeys never reach the log output. Auth and user handlers may log
// request attributes that carry credentials.
var redactedKeys = map[string]struct{}{
	"password":       {},
	"password_hash":  {},
	"token":          {},
	"csrf_token":     {},
	"authorization":  {},
	"s3_secret_key":  {},
	"session_cookie": {},
}

// NewLogger returns the process logger: JSON when LOG_FORMAT=json, text
// otherwise, at LOG_LEVEL, tagged with the service and environment.
func NewLogger(cfg *Config) *slog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true, ReplaceAttr: redact}
	env := "development"
	if cfg != nil {
		if level, err := parseLevel(cfg.LogLevel); err == nil {
			opts.Level = level
		}
		if cfg.AppEnv != "" {
			env = cfg.AppEnv
		}
	}
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", "lumen"), slog.String("env", env))
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if _, ok := redactedKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, "[redacted]")
	}
	return a
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if raw == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
	}
	return level, nil
}
