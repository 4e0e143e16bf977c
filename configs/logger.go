package config

import (
	"log/slog"
	"os"
)

// InitLogger installs a text slog handler at the configured level as the process default.
func InitLogger(s Settings) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: s.LogLevel}))
	slog.SetDefault(logger)
	return logger
}
