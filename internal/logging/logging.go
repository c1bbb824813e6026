// Package logging configures the zerolog logger shared by the engine.
// Logs go to the console and to a rotated file under the Sidekick home
// directory so issues in an unattended tray app can be diagnosed later.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the application logger. File logging is best-effort: if the
// log directory cannot be created the logger falls back to console only.
func New(configDir, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	writers := []io.Writer{consoleWriter()}
	if fw := fileWriter(configDir); fw != nil {
		writers = append(writers, fw)
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().Timestamp().Logger()
}

// consoleWriter returns a human-readable writer on a TTY, JSON otherwise.
func consoleWriter() io.Writer {
	if isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return os.Stderr
}

// fileWriter returns a rotating file writer, or nil if the log directory
// cannot be created.
func fileWriter(configDir string) io.Writer {
	logDir := filepath.Join(configDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "sidekick.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}
}
