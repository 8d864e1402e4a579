package runlog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRecordFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "run-1")
	l.Record(Entry{Event: EventStageStart, Message: "stage started", Sample: "S1", Stage: "trim"})

	line := buf.String()
	for _, want := range []string{"stage started", "event=stage_start", "sample=S1", "stage=trim", "run_id=run-1", "INF"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}
	if strings.Count(line, "\n") != 1 {
		t.Errorf("expected exactly one line, got %q", line)
	}
}

func TestRecordLevels(t *testing.T) {
	tests := []struct {
		event Event
		level string
	}{
		{EventQCPass, "INF"},
		{EventBreakpoint, "WRN"},
		{EventStageFail, "ERR"},
		{EventRunAbort, "ERR"},
	}
	for _, tc := range tests {
		t.Run(string(tc.event), func(t *testing.T) {
			var buf bytes.Buffer
			New(&buf, "").Record(Entry{Event: tc.event, Message: "m"})
			if !strings.Contains(buf.String(), tc.level) {
				t.Errorf("expected level %s in %q", tc.level, buf.String())
			}
		})
	}
}

func TestRecordErrorAndDuration(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "").Record(Entry{
		Event:    EventStageFail,
		Message:  "stage failed",
		Err:      fmt.Errorf("diamond exited with code 1"),
		Duration: 1500 * time.Millisecond,
		Fields:   map[string]any{"tool": "diamond"},
	})
	line := buf.String()
	for _, want := range []string{"error=", "diamond exited with code 1", "duration_ms=1500", "tool=diamond"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}
}

func TestOpenReplacesEarlierRunAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MAPle.log")

	l, err := Open(path, "a")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	l.Record(Entry{Event: EventRunStart, Message: "first"})
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
	l.Record(Entry{Event: EventRunStart, Message: "dropped"})

	l, err = Open(path, "b")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	l.Record(Entry{Event: EventRunStart, Message: "second"})
	_ = l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if strings.Contains(content, "first") || !strings.Contains(content, "second") {
		t.Errorf("expected only the second run in the log, got %q", content)
	}
	if strings.Contains(content, "run_id=a") {
		t.Error("the earlier run's lines must not survive a reopen")
	}
	if strings.Contains(content, "dropped") {
		t.Error("records after Close must be dropped")
	}
}

func TestConcurrentWritersKeepLinesIntact(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Record(Entry{Event: EventStageFinish, Message: "done", Sample: fmt.Sprintf("S%d", i)})
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 400 {
		t.Fatalf("expected 400 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.Contains(line, "event=stage_finish") {
			t.Fatalf("interleaved line %q", line)
		}
	}
}

func TestNilAndNop(t *testing.T) {
	var l *Log
	l.Record(Entry{Event: EventRunStart})
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	Nop().Record(Entry{Event: EventRunStart})
}
