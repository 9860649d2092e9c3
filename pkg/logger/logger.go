package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// Category represents a log category
type Category string

const (
	CategoryAuth      Category = "auth"
	CategoryWebSocket Category = "websocket"
	CategoryAPI       Category = "api"
	CategoryDB        Category = "db"
	CategoryFace      Category = "face"
	CategoryMatch     Category = "match"
	CategoryIngest    Category = "ingest"
	CategoryStorage   Category = "storage"
	CategoryScheduler Category = "scheduler"
	CategoryStartup   Category = "startup"
)

// Level represents log level
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps LOG_LEVEL values (debug, info, warn, error) to a Level.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LogEntry is one JSON line of the log files, as read back by ReadLogs.
type LogEntry struct {
	Timestamp time.Time              `json:"time"`
	Level     Level                  `json:"level"`
	Category  Category               `json:"category"`
	Action    string                 `json:"action"`
	Message   string                 `json:"msg"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Logger writes category/action records through slog.
type Logger struct {
	slog   *slog.Logger
	logDir string
	file   *dailyFile
}

var (
	defaultLogger *Logger
	mu            sync.RWMutex
)

// Init replaces the default logger and installs it as the slog default.
func Init(logDir string, console bool, level string) error {
	l, err := NewLogger(logDir, console, ParseLevel(level))
	if err != nil {
		return err
	}
	mu.Lock()
	old := defaultLogger
	defaultLogger = l
	mu.Unlock()
	if old != nil {
		old.Close()
	}
	slog.SetDefault(l.slog)
	return nil
}

// NewLogger creates a logger writing JSON lines to logDir and, if console is
// set, colored lines to stderr. An empty logDir disables the file output.
func NewLogger(logDir string, console bool, level Level) (*Logger, error) {
	opts := &slog.HandlerOptions{Level: level.slogLevel()}
	var handlers []slog.Handler
	l := &Logger{logDir: logDir}

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		l.file = &dailyFile{dir: logDir}
		handlers = append(handlers, slog.NewJSONHandler(l.file, opts))
	}
	if console {
		handlers = append(handlers, tint.NewHandler(os.Stderr, &tint.Options{
			Level:      opts.Level,
			TimeFormat: "15:04:05.000",
		}))
	}
	if len(handlers) == 0 {
		handlers = append(handlers, slog.NewTextHandler(io.Discard, opts))
	}

	l.slog = slog.New(NewMultiHandler(handlers...))
	return l, nil
}

// Slog exposes the underlying structured logger.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Log writes a single record.
func (l *Logger) Log(level Level, category Category, action, message string, err error, data map[string]interface{}) {
	attrs := make([]slog.Attr, 0, 4)
	attrs = append(attrs, slog.String("category", string(category)), slog.String("action", action))
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	if len(data) > 0 {
		attrs = append(attrs, slog.Any("data", data))
	}
	l.slog.LogAttrs(context.Background(), level.slogLevel(), message, attrs...)
}

// Close closes the current log file.
func (l *Logger) Close() {
	if l.file != nil {
		l.file.Close()
	}
}

// Default returns the default logger. Before Init it logs to the console only.
func Default() *Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger, _ = NewLogger("", true, LevelInfo)
	}
	return defaultLogger
}

// dailyFile is an io.Writer that switches to app_YYYY-MM-DD.log at midnight.
type dailyFile struct {
	mu   sync.Mutex
	dir  string
	day  string
	file *os.File
}

func fileNameFor(day string) string {
	return fmt.Sprintf("app_%s.log", day)
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	today := time.Now().Format("2006-01-02")
	if d.file == nil || d.day != today {
		if d.file != nil {
			d.file.Close()
		}
		f, err := os.OpenFile(filepath.Join(d.dir, fileNameFor(today)), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return 0, err
		}
		d.file = f
		d.day = today
	}
	return d.file.Write(p)
}

func (d *dailyFile) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file != nil {
		d.file.Close()
		d.file = nil
	}
}
