package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndReadAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	logger, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	if err := logger.Append(LogEvent{Event: EventSessionCreated, SessionID: "s1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := logger.Append(LogEvent{Time: fixed, Event: EventLogosGenerated, SessionID: "s1", Generation: 2, Count: 3}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Time.IsZero() {
		t.Error("expected Append to stamp a time")
	}
	if events[1].Event != EventLogosGenerated || events[1].Generation != 2 || !events[1].Time.Equal(fixed) {
		t.Errorf("second event = %+v", events[1])
	}
}

func TestReadAllMissingFile(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestReadAllMalformedLine(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if err := os.WriteFile(logger.Path(), []byte("{not json}\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := logger.ReadAll(); err == nil {
		t.Error("expected parse error")
	}
}

func TestNilLoggerDiscards(t *testing.T) {
	var logger *Logger
	if err := logger.Append(LogEvent{Event: EventSessionCreated}); err != nil {
		t.Errorf("nil Append returned %v", err)
	}
	if logger.Path() != "" {
		t.Error("nil Path should be empty")
	}
}
