package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ReadLogsOptions options for reading logs
type ReadLogsOptions struct {
	Date     string   // YYYY-MM-DD, defaults to today
	Category Category // Filter by category (empty = all)
	Level    Level    // Filter by level (empty = all)
	Lines    int      // Number of entries to return (default 100, max 1000)
	Search   string   // Search in message/action/error
}

func ReadLogs(opts ReadLogsOptions) ([]LogEntry, error) {
	return Default().ReadLogs(opts)
}

// ReadLogs returns the newest entries of one day's log file that pass the filters.
func (l *Logger) ReadLogs(opts ReadLogsOptions) ([]LogEntry, error) {
	if opts.Lines <= 0 {
		opts.Lines = 100
	}
	if opts.Lines > 1000 {
		opts.Lines = 1000
	}
	if opts.Date == "" {
		opts.Date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", opts.Date); err != nil {
		return nil, errors.New("date must be formatted as YYYY-MM-DD")
	}
	if l.logDir == "" {
		return []LogEntry{}, nil
	}

	f, err := os.Open(filepath.Join(l.logDir, fileNameFor(opts.Date)))
	if err != nil {
		if os.IsNotExist(err) {
			return []LogEntry{}, nil
		}
		return nil, err
	}
	defer f.Close()

	search := strings.ToLower(opts.Search)
	entries := []LogEntry{}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if opts.Category != "" && entry.Category != opts.Category {
			continue
		}
		if opts.Level != "" && entry.Level != opts.Level {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(entry.Message), search) &&
			!strings.Contains(strings.ToLower(entry.Action), search) &&
			!strings.Contains(strings.ToLower(entry.Error), search) {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if len(entries) > opts.Lines {
		entries = entries[:opts.Lines]
	}
	return entries, nil
}

func GetLogDir() string {
	return Default().logDir
}

func ListLogFiles() ([]string, error) {
	return Default().ListLogFiles()
}

// ListLogFiles returns the .log files in the log directory
func (l *Logger) ListLogFiles() ([]string, error) {
	files := []string{}
	if l.logDir == "" {
		return files, nil
	}

	entries, err := os.ReadDir(l.logDir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".log" {
			files = append(files, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}
