package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Logger writes timestamped lines to the daemon log file, falling back to
// stdout when no file could be opened.
type Logger struct {
	file *os.File
	path string
}

// NewLogger opens the given log file for appending. An empty path or an open
// failure yields a stdout-only logger rather than an error.
func NewLogger(logFile string) *Logger {
	l := &Logger{path: logFile}
	if logFile == "" {
		return l
	}
	_ = os.MkdirAll(filepath.Dir(logFile), 0o755)
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "eassist: cannot open log file %s: %v\n", logFile, err)
		return l
	}
	l.file = f
	return l
}

// Write appends a timestamped message.
func (l *Logger) Write(message string) {
	line := fmt.Sprintf("%s: %s\n", time.Now().Format("2006-01-02 15:04:05"), message)
	if l != nil && l.file != nil {
		l.file.WriteString(line)
		l.file.Sync()
		return
	}
	fmt.Print(line)
}

// Writef formats and appends a timestamped message.
func (l *Logger) Writef(format string, args ...interface{}) {
	l.Write(fmt.Sprintf(format, args...))
}

// Tail returns up to n of the most recent log lines, newest last. Used by the
// error-logs diagnostics endpoint.
func (l *Logger) Tail(n int) []string {
	if l == nil || l.path == "" || n <= 0 {
		return nil
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// Path returns the backing file path, empty for a stdout-only logger.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() {
	if l != nil && l.file != nil {
		l.file.Close()
	}
}
