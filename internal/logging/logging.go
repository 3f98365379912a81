// Package logging routes the standard logger to stderr and an optional file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	logFile *os.File
	console io.Writer = os.Stderr
)

// Init sends log output to stderr and, when logPath is set, appends to that file too.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	writers := []io.Writer{console}
	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("mkdir log dir: %w", err)
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = file
		writers = append(writers, logFile)
	}

	log.SetOutput(io.MultiWriter(writers...))
	return nil
}

// Close flushes and detaches the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(console)
	err := logFile.Close()
	logFile = nil
	return err
}

// LogEvent writes one formatted line to the configured outputs.
func LogEvent(format string, args ...any) {
	log.Println(fmt.Sprintf(format, args...))
}

// LogRequest writes one line per served dashboard request.
func LogRequest(id, method, path string, status int, elapsed time.Duration) {
	log.Println(buildRequestMessage(id, method, path, status, elapsed))
}

func buildRequestMessage(id, method, path string, status int, elapsed time.Duration) string {
	idValue := strings.TrimSpace(id)
	if idValue == "" {
		idValue = "-"
	}
	if path == "" {
		path = "/"
	}
	parts := []string{
		fmt.Sprintf("[%s]", strings.ToUpper(strings.TrimSpace(method))),
		fmt.Sprintf("id=%s", idValue),
		fmt.Sprintf("path=%s", path),
		fmt.Sprintf("status=%d", status),
		fmt.Sprintf("took=%s", elapsed.Round(time.Millisecond)),
	}
	return strings.Join(parts, " ")
}
