package configs

import (
	"log/slog"
	"strings"
)

// Log output formats.
const (
	LogText   = "text"
	LogJSON   = "json"
	LogPretty = "pretty"
)

// Logger configures the service logger. Output goes to stdout unless File
// is set, in which case it is written to File and rotated by size.
type Logger struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Format     string `env:"FORMAT" envDefault:"text"`
	File       string `env:"FILE"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"5"`
}

// SlogLevel maps Level onto slog levels; "warning" and "err" are accepted
// as aliases and anything unrecognised is info.
func (c Logger) SlogLevel() slog.Level {
	level := strings.ToLower(strings.TrimSpace(c.Level))
	switch level {
	case "warning":
		return slog.LevelWarn
	case "err":
		return slog.LevelError
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// SlogFormat returns one of LogText, LogJSON or LogPretty.
func (c Logger) SlogFormat() string {
	switch strings.ToLower(c.Format) {
	case LogJSON:
		return LogJSON
	case LogPretty, "tint":
		return LogPretty
	}
	return LogText
}
