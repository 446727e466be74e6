// Package logger provides leveled logging with an in-memory ring and an
// append-only file under the hivectl home directory.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"
)

// LogEntry is a single log record.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

const maxEntries = 1000

var (
	mu      sync.Mutex
	entries []LogEntry
	logFile *os.File
	verbose bool

	// GitHub tokens must never reach the log file.
	tokenRegex = regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{16,}`)
)

// Init opens the log file under appDir/logs. Logging works without Init; it
// just stays in memory.
func Init(appDir string) error {
	mu.Lock()
	defer mu.Unlock()

	logDir := filepath.Join(appDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	name := time.Now().Format("20060102") + "-hivectl.log"
	f, err := os.OpenFile(filepath.Join(logDir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	logFile = f
	return nil
}

// SetVerbose echoes log entries to stderr when enabled.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// AddLog records a log entry at the given level.
func AddLog(level, message string) {
	message = tokenRegex.ReplaceAllString(message, "gh*_REDACTED")

	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     level,
		Message:   message,
	}

	mu.Lock()
	defer mu.Unlock()

	entries = append(entries, entry)
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[%s] [%s] %s\n", entry.Timestamp, level, message)
	}
	if logFile != nil {
		fmt.Fprintf(logFile, "[%s] [%s] %s\n", entry.Timestamp, level, message)
	}
}

// GetLogs returns a copy of the in-memory entries.
func GetLogs() []LogEntry {
	mu.Lock()
	defer mu.Unlock()
	out := make([]LogEntry, len(entries))
	copy(out, entries)
	return out
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
