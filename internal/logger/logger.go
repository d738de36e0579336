package logger

import (
	"log/slog"
	"os"
	"strings"
)

var LogLevel = new(slog.LevelVar)

var Handler slog.Handler = slog.NewJSONHandler(
	os.Stderr,
	&slog.HandlerOptions{AddSource: true, Level: LogLevel},
)

var Logger = slog.New(Handler)

// InitSlog installs Logger as the process default at the given level
// ("debug", "info", "warn", "error"). Unknown values fall back to info.
func InitSlog(level string) {
	slog.SetDefault(Logger)
	LogLevel.Set(ParseLevel(level))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
