package logger

import (
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	mu   sync.Mutex
	root hclog.Logger
)

// Init configures the process-wide logger. Level is one of
// "debug", "info", "warn", "error"; anything else falls back to info.
func Init(level string) {
	mu.Lock()
	defer mu.Unlock()

	root = hclog.New(&hclog.LoggerOptions{
		Name:       "milagre-car",
		Level:      hclog.LevelFromString(level),
		Output:     os.Stdout,
		JSONFormat: true,
	})
}

func get() hclog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if root == nil {
		root = hclog.New(&hclog.LoggerOptions{
			Name:       "milagre-car",
			Level:      hclog.Info,
			Output:     os.Stdout,
			JSONFormat: true,
		})
	}
	return root
}

func args(fields map[string]any) []any {
	out := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}

func Debug(msg string, fields map[string]any) {
	get().Debug(msg, args(fields)...)
}

func Info(msg string, fields map[string]any) {
	get().Info(msg, args(fields)...)
}

func Warn(msg string, fields map[string]any) {
	get().Warn(msg, args(fields)...)
}

func Error(msg string, fields map[string]any) {
	get().Error(msg, args(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	get().Error(msg, args(fields)...)
	os.Exit(1)
}

// TokenPrefix returns a loggable form of a token key. Full keys must
// never reach the logs.
func TokenPrefix(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8] + "..."
}
