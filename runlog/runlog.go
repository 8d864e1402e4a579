package runlog

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BioSina/MAPle/logger"
)

// Event names a run log record.
type Event string

const (
	EventRunStart     Event = "run_start"
	EventRunFinish    Event = "run_finish"
	EventRunAbort     Event = "run_abort"
	EventSetupStart   Event = "setup_start"
	EventSetupFinish  Event = "setup_finish"
	EventDirCreate    Event = "dir_create"
	EventStageStart   Event = "stage_start"
	EventStageFinish  Event = "stage_finish"
	EventStageFail    Event = "stage_fail"
	EventQCPass       Event = "qc_pass"
	EventBreakpoint   Event = "breakpoint"
	EventSampleFinish Event = "sample_finish"
)

const FieldEvent = "event"

// Entry is one run log record.
type Entry struct {
	Event   Event
	Message string
	Sample  string
	Stage   string
	// Err is rendered as the error field.
	Err error
	// Duration is rendered in milliseconds when non-zero.
	Duration time.Duration
	Fields   map[string]any
}

// Log is the run log. It is safe for concurrent use; writes
// after Close are dropped.
type Log struct {
	mu     sync.RWMutex
	closer io.Closer
	zl     zerolog.Logger
	closed bool
}

// Open creates the run log at path, replacing the log of an earlier run.
func Open(path, runID string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	l := New(f, runID)
	l.closer = f
	return l, nil
}

// New creates a run log writing to w. Close does not close w.
func New(w io.Writer, runID string) *Log {
	out := zerolog.ConsoleWriter{
		Out:        zerolog.SyncWriter(w),
		NoColor:    true,
		TimeFormat: time.RFC3339,
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName},
	}
	zl := zerolog.New(out).With().Timestamp().Logger()
	if runID != "" {
		zl = zl.With().Str(logger.FieldRunID, runID).Logger()
	}
	return &Log{zl: zl}
}

// Nop returns a run log that discards everything.
func Nop() *Log {
	return &Log{zl: zerolog.Nop()}
}

// Record appends e to the log.
func (l *Log) Record(e Entry) {
	if l == nil {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}

	var ev *zerolog.Event
	switch e.Event {
	case EventStageFail, EventRunAbort:
		ev = l.zl.Error()
	case EventBreakpoint:
		ev = l.zl.Warn()
	default:
		ev = l.zl.Info()
	}
	ev = ev.Str(FieldEvent, string(e.Event))
	if e.Sample != "" {
		ev = ev.Str(logger.FieldSample, e.Sample)
	}
	if e.Stage != "" {
		ev = ev.Str(logger.FieldStage, e.Stage)
	}
	if e.Duration > 0 {
		ev = ev.Int64(logger.FieldDuration, e.Duration.Milliseconds())
	}
	if e.Err != nil {
		ev = ev.Err(e.Err)
	}
	for k, v := range e.Fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(e.Message)
}

// Close flushes and closes the underlying file. It is safe to call more
// than once.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.closer == nil {
		return nil
	}
	if f, ok := l.closer.(*os.File); ok {
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return err
		}
	}
	return l.closer.Close()
}
