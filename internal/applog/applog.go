// Package applog holds the optional diagnostics around the game: per-concern
// log files in an output directory and a debug switch.
package applog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AppLogger provides logging utilities for the application
// Used by both the game binary and tests
type AppLogger struct {
	outputDir  string
	logState   bool
	logAI      bool
	debug      bool
	stateLog   *os.File
	aiLog      *os.File
	mu         sync.Mutex
	stateCount int
	aiCount    int
	dump       func(w io.Writer)
}

// Config holds logging configuration
type Config struct {
	OutputDir string
	LogState  bool
	LogAI     bool
	Debug     bool
}

// New creates a new application logger
func New(config Config) (*AppLogger, error) {
	al := &AppLogger{
		outputDir: config.OutputDir,
		logState:  config.LogState,
		logAI:     config.LogAI,
		debug:     config.Debug,
	}

	if al.outputDir == "" {
		return al, nil // No file logging
	}

	var err error
	if al.logState {
		al.stateLog, err = openLog(filepath.Join(al.outputDir, "state.log"))
		if err != nil {
			return nil, fmt.Errorf("failed to open state log: %w", err)
		}
	}
	if al.logAI {
		al.aiLog, err = openLog(filepath.Join(al.outputDir, "ai.log"))
		if err != nil {
			al.Close()
			return nil, fmt.Errorf("failed to open AI log: %w", err)
		}
	}

	return al, nil
}

func openLog(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// NewFromEnv creates a logger from environment variables
// Checks both LOG_* (binary) and TEST_LOG_* (test) variants
func NewFromEnv() (*AppLogger, error) {
	envBool := func(mainVar, testVar string) bool {
		return os.Getenv(mainVar) == "1" || os.Getenv(testVar) == "1"
	}
	envStr := func(mainVar, testVar string) string {
		if v := os.Getenv(mainVar); v != "" {
			return v
		}
		return os.Getenv(testVar)
	}

	return New(Config{
		OutputDir: envStr("LOG_OUTPUT_DIR", "TEST_OUTPUT_DIR"),
		LogState:  envBool("LOG_STATE", "TEST_LOG_STATE"),
		LogAI:     envBool("LOG_AI", "TEST_LOG_AI"),
		Debug:     envBool("LOG_DEBUG", "TEST_DEBUG"),
	})
}

// Close closes all open log files
func (al *AppLogger) Close() {
	if al.stateLog != nil {
		al.stateLog.Close()
	}
	if al.aiLog != nil {
		al.aiLog.Close()
	}
}

// SetDump registers a function that writes a dump of the session store.
// It is written to the state log next to each state snapshot and to stderr
// on errors in dev mode.
func (al *AppLogger) SetDump(dump func(w io.Writer)) {
	al.mu.Lock()
	defer al.mu.Unlock()
	al.dump = dump
}

// LogState writes a JSON snapshot of state
func (al *AppLogger) LogState(context string, state any) {
	if !al.logState || al.stateLog == nil {
		return
	}

	al.mu.Lock()
	defer al.mu.Unlock()

	al.stateCount++
	timestamp := time.Now().Format("15:04:05.000")

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "\n========== STATE #%d [%s] ==========\n", al.stateCount, timestamp)
	fmt.Fprintf(&buf, "Context: %s\n\n", context)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		fmt.Fprintf(&buf, "Error encoding state: %v\n", err)
	} else {
		buf.Write(data)
		buf.WriteString("\n")
	}
	if al.dump != nil {
		buf.WriteString("\n")
		al.dump(&buf)
	}

	al.stateLog.Write(buf.Bytes())
}

// LogAI logs one decision made by an AI opponent
func (al *AppLogger) LogAI(actor, kind, answer string) {
	if !al.logAI || al.aiLog == nil {
		return
	}

	al.mu.Lock()
	defer al.mu.Unlock()

	al.aiCount++
	timestamp := time.Now().Format("15:04:05.000")

	fmt.Fprintf(al.aiLog, "[%s] #%d %s [%s]: %s\n", timestamp, al.aiCount, kind, actor, answer)
}

// Debug logs a debug message if debug mode is enabled
func (al *AppLogger) Debug(format string, args ...any) {
	if !al.debug {
		return
	}
	log.Printf("[DEBUG] "+format, args...)
}

// IsEnabled returns true if any logging is enabled
func (al *AppLogger) IsEnabled() bool {
	return al.logState || al.logAI || al.debug
}

// ============================================================================
// Global helper functions
// ============================================================================

var (
	appLogger *AppLogger
	devMode   bool
)

// Init initializes the global application logger
func Init(config Config) error {
	al, err := New(config)
	if err != nil {
		return err
	}
	appLogger = al
	return nil
}

// Set installs al as the global logger
func Set(al *AppLogger) {
	appLogger = al
}

// Get returns the global application logger
func Get() *AppLogger {
	return appLogger
}

// SetDevMode makes Error dump the session store
func SetDevMode(on bool) {
	devMode = on
}

// Error logs an error with context and dumps the store in dev mode
func Error(context string, err error) {
	log.Printf("ERROR [%s]: %v", context, err)
	if devMode && appLogger != nil {
		appLogger.mu.Lock()
		dump := appLogger.dump
		appLogger.mu.Unlock()
		if dump != nil {
			dump(os.Stderr)
		}
	}
}

// LogState logs the game state using the global logger
func LogState(context string, state any) {
	if appLogger != nil {
		appLogger.LogState(context, state)
	}
}

// LogAI logs an AI decision using the global logger
func LogAI(actor, kind, answer string) {
	if appLogger != nil {
		appLogger.LogAI(actor, kind, answer)
	}
}

// Debug logs a debug message using the global logger
func Debug(format string, args ...any) {
	if appLogger != nil {
		appLogger.Debug(format, args...)
	}
}

// Close closes the global application logger
func Close() {
	if appLogger != nil {
		appLogger.Close()
	}
}
