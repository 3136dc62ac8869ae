// Package logging provides config-driven categorized logging for MidnightScout.
// Entries are JSON lines written by zap to <dir>/scout.log. When debug mode is
// off only warnings and errors reach the file; nothing is ever written to the
// terminal.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot   Category = "boot"   // Startup and shutdown
	CategoryConfig Category = "config" // Config load and reload
	CategorySearch Category = "search" // Gemini lead searches
	CategoryMap    Category = "map"    // Map view and engine
	CategoryTiles  Category = "tiles"  // Basemap tile fetching
	CategoryUI     Category = "ui"     // Shell state transitions
	CategoryExport Category = "export" // Lead export
)

// LogFileName is the file created inside the configured log directory.
const LogFileName = "scout.log"

// Options controls Initialize.
type Options struct {
	Dir        string          // directory for scout.log
	DebugMode  bool            // master toggle, false keeps only warnings and errors
	Level      string          // debug, info, warn, error; ignored outside debug mode
	Categories map[string]bool // per-category toggles, missing means enabled
}

// Logger is a category-scoped logger.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	opts    Options
	root    *zap.Logger
	file    *os.File
	loggers = make(map[Category]*Logger)
)

// Initialize sets up the log file and zap core. Calling it again replaces the
// previous configuration.
func Initialize(o Options) error {
	CloseAll()

	mu.Lock()
	defer mu.Unlock()

	opts = o
	if o.Dir == "" {
		if !o.DebugMode {
			return nil
		}
		return fmt.Errorf("log directory required")
	}
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(o.Dir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	level := zapcore.WarnLevel
	if o.DebugMode {
		level = parseLevel(o.Level)
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level)

	file = f
	root = zap.New(core)
	return nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsDebugMode returns whether logging is enabled at all.
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return opts.DebugMode
}

// IsCategoryEnabled returns whether a specific category gets full debug logging.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return opts.DebugMode && categoryEnabled(category)
}

// categoryEnabled reports whether category has a real logger. Outside debug
// mode every category does and the core's warn level does the filtering.
func categoryEnabled(category Category) bool {
	if root == nil {
		return false
	}
	if !opts.DebugMode || opts.Categories == nil {
		return true
	}
	enabled, exists := opts.Categories[string(category)]
	return !exists || enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if logging is not initialized or the category is
// disabled in debug mode.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	enabled := categoryEnabled(category)
	mu.RUnlock()

	if !enabled {
		return &Logger{category: category, sugar: zap.NewNop().Sugar()}
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := &Logger{
		category: category,
		sugar:    root.With(zap.String("cat", string(category))).Sugar(),
	}
	loggers[category] = l
	return l
}

// Zap exposes the underlying zap logger for callers that want typed fields.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// CloseAll flushes and closes the log file (call at shutdown)
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()

	if root != nil {
		_ = root.Sync()
	}
	if file != nil {
		_ = file.Close()
	}
	root = nil
	file = nil
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// BootError logs an error to the boot category
func BootError(format string, args ...interface{}) { Get(CategoryBoot).Error(format, args...) }

// Config logs to the config category
func Config(format string, args ...interface{}) { Get(CategoryConfig).Info(format, args...) }

// ConfigWarn logs a warning to the config category
func ConfigWarn(format string, args ...interface{}) { Get(CategoryConfig).Warn(format, args...) }

// Search logs to the search category
func Search(format string, args ...interface{}) { Get(CategorySearch).Info(format, args...) }

// SearchDebug logs debug output to the search category
func SearchDebug(format string, args ...interface{}) { Get(CategorySearch).Debug(format, args...) }

// SearchError logs an error to the search category
func SearchError(format string, args ...interface{}) { Get(CategorySearch).Error(format, args...) }

// Map logs to the map category
func Map(format string, args ...interface{}) { Get(CategoryMap).Info(format, args...) }

// MapDebug logs debug output to the map category
func MapDebug(format string, args ...interface{}) { Get(CategoryMap).Debug(format, args...) }

// MapWarn logs a warning to the map category
func MapWarn(format string, args ...interface{}) { Get(CategoryMap).Warn(format, args...) }

// Tiles logs to the tiles category
func Tiles(format string, args ...interface{}) { Get(CategoryTiles).Info(format, args...) }

// TilesDebug logs debug output to the tiles category
func TilesDebug(format string, args ...interface{}) { Get(CategoryTiles).Debug(format, args...) }

// TilesWarn logs a warning to the tiles category
func TilesWarn(format string, args ...interface{}) { Get(CategoryTiles).Warn(format, args...) }

// UI logs to the ui category
func UI(format string, args ...interface{}) { Get(CategoryUI).Info(format, args...) }

// UIDebug logs debug output to the ui category
func UIDebug(format string, args ...interface{}) { Get(CategoryUI).Debug(format, args...) }

// UIError logs an error to the ui category
func UIError(format string, args ...interface{}) { Get(CategoryUI).Error(format, args...) }

// Export logs to the export category
func Export(format string, args ...interface{}) { Get(CategoryExport).Info(format, args...) }

// ExportError logs an error to the export category
func ExportError(format string, args ...interface{}) { Get(CategoryExport).Error(format, args...) }

// =============================================================================
// REQUEST ID TRACING
// =============================================================================

// WithRequestID creates a request-scoped logger carrying a correlation ID.
func WithRequestID(category Category, requestID string) *Logger {
	return Get(category).With("req", requestID)
}

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	logger *Logger
	op     string
	start  time.Time
}

// StartTimer begins timing an operation
func StartTimer(l *Logger, operation string) *Timer {
	return &Timer{logger: l, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if the duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		t.logger.Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		t.logger.Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
