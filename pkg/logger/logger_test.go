package logger

import (
	"errors"
	"testing"
)

func TestReadLogsFilters(t *testing.T) {
	l, err := NewLogger(t.TempDir(), false, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	l.Log(LevelInfo, CategoryMatch, "batch_started", "Batch started", nil, map[string]interface{}{"photos": 3})
	l.Log(LevelError, CategoryMatch, "photo_skipped", "Photo skipped", errors.New("face api timeout"), nil)
	l.Log(LevelInfo, CategoryAuth, "login", "Admin logged in", nil, nil)
	l.Log(LevelDebug, CategoryAPI, "request", "GET /api/gallery", nil, nil)

	tests := []struct {
		name string
		opts ReadLogsOptions
		want int
	}{
		{"all", ReadLogsOptions{}, 4},
		{"by category", ReadLogsOptions{Category: CategoryMatch}, 2},
		{"by level", ReadLogsOptions{Level: LevelError}, 1},
		{"search matches error text", ReadLogsOptions{Search: "TIMEOUT"}, 1},
		{"limit", ReadLogsOptions{Lines: 2}, 2},
		{"no match", ReadLogsOptions{Category: CategoryStorage}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := l.ReadLogs(tt.opts)
			if err != nil {
				t.Fatalf("ReadLogs: %v", err)
			}
			if len(entries) != tt.want {
				t.Errorf("got %d entries, want %d", len(entries), tt.want)
			}
		})
	}
}

func TestReadLogsDecodesFields(t *testing.T) {
	l, err := NewLogger(t.TempDir(), false, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	l.Log(LevelWarn, CategoryIngest, "file_rejected", "Rejected upload", errors.New("unsupported media type"), map[string]interface{}{"filename": "notes.txt"})

	entries, err := l.ReadLogs(ReadLogsOptions{})
	if err != nil {
		t.Fatalf("ReadLogs: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Level != LevelWarn || e.Category != CategoryIngest || e.Action != "file_rejected" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Error != "unsupported media type" {
		t.Errorf("error = %q", e.Error)
	}
	if e.Data["filename"] != "notes.txt" {
		t.Errorf("data = %v", e.Data)
	}
}

func TestReadLogsRejectsBadDate(t *testing.T) {
	l, err := NewLogger(t.TempDir(), false, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if _, err := l.ReadLogs(ReadLogsOptions{Date: "../../etc/passwd"}); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
