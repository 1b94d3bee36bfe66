// Package logger builds the service's slog.Logger from configuration.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"reward-ledger/internal/config/configs"
)

// New returns a logger writing to stdout, or to a rotated file when
// cfg.File is set. The returned closer releases the file.
func New(cfg configs.Logger, env string) (*slog.Logger, io.Closer) {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer = io.NopCloser(nil)
	)
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
		out, closer = lj, lj
	}

	level := cfg.SlogLevel()
	var handler slog.Handler
	switch cfg.SlogFormat() {
	case configs.LogJSON:
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	case configs.LogPretty:
		handler = tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
			NoColor:    cfg.File != "",
		})
	default:
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler).With(slog.String("env", env)), closer
}
