// Package logger writes the application log to a file. Standard output is
// owned by the TUI and by the MCP stdio transport, so nothing is logged there.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	slogLogger *slog.Logger
	levelVar   = new(slog.LevelVar)
	logFile    *os.File
	logPath    string
	mu         sync.Mutex
)

// LogFileName is the log file created in the data directory by default.
const LogFileName = "timebox.log"

// SetDebug switches between debug and info level.
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// Init opens path for appending and routes all logging to it. Calling Init
// again with the logger already open is a no-op.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	logFile = f
	logPath = path
	slogLogger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	slogLogger.Info("Logger initialized", "path", path)
	return nil
}

// Path returns the file being written, or "" before Init.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// current returns the file logger, or a discarding logger before Init.
// Caller holds mu.
func current() *slog.Logger {
	if slogLogger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slogLogger
}

func logWithLevel(level slog.Level, format string, args ...interface{}) {
	mu.Lock()
	l := current()
	mu.Unlock()

	if !l.Enabled(context.Background(), level) {
		return
	}
	l.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

// Debug writes a debug message.
func Debug(format string, args ...interface{}) {
	logWithLevel(slog.LevelDebug, format, args...)
}

// Info writes an info message.
func Info(format string, args ...interface{}) {
	logWithLevel(slog.LevelInfo, format, args...)
}

// Warn writes a warning message.
func Warn(format string, args ...interface{}) {
	logWithLevel(slog.LevelWarn, format, args...)
}

// Error writes an error message.
func Error(format string, args ...interface{}) {
	logWithLevel(slog.LevelError, format, args...)
}

// ComponentLogger returns a slog.Logger with the component attribute
// pre-attached.
//
//	log := logger.ComponentLogger("timer")
//	log.Info("started", "total", total)
func ComponentLogger(component string) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current().With(slog.String("component", component))
}

// Close closes the log file. Later calls log nowhere until Init is called again.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	slogLogger = nil
	logPath = ""
}

// Reset closes the log file and restores the default level.
func Reset() {
	Close()
	levelVar.Set(slog.LevelInfo)
}
