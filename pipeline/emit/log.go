package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogEmitter implements Emitter by writing structured log output to a
// writer. This is the module's logging layer: every engine and agent
// lifecycle moment passes through it when configured.
//
// Supports two output modes:
//   - Text mode (default): Human-readable format with key=value pairs
//   - JSON mode: Machine-readable JSON format, one event per line
//
// Example text output:
//
//	[step_start] runID=run-001 seq=2 stepID=parse-data
//
// Example JSON output:
//
//	{"runID":"run-001","seq":2,"stepID":"parse-data","msg":"step_start","meta":null,"at":"2025-08-25T10:00:00Z"}
//
// Usage:
//
//	// Text output to stdout
//	emitter := emit.NewLogEmitter(os.Stdout, false)
//
//	// JSON output to file
//	f, _ := os.Create("events.jsonl")
//	defer f.Close()
//	emitter := emit.NewLogEmitter(f, true)
type LogEmitter struct {
	mu       sync.Mutex
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter creates a new LogEmitter.
//
// Parameters:
//   - writer: Where to write the log output (e.g., os.Stdout, file).
//     A nil writer falls back to os.Stdout.
//   - jsonMode: If true, emit JSON lines; if false, emit text format
func NewLogEmitter(writer io.Writer, jsonMode bool) *LogEmitter {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogEmitter{
		writer:   writer,
		jsonMode: jsonMode,
	}
}

// Emit writes an event to the configured writer.
//
// A mutex serializes writes so events from a parallel ready batch never
// interleave mid-line.
func (l *LogEmitter) Emit(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.jsonMode {
		l.emitJSON(event)
	} else {
		l.emitText(event)
	}
}

// emitJSON writes the event as a single JSON line (JSONL format).
func (l *LogEmitter) emitJSON(event Event) {
	data, err := json.Marshal(struct {
		RunID  string                 `json:"runID"`
		Seq    int                    `json:"seq"`
		StepID string                 `json:"stepID"`
		Msg    string                 `json:"msg"`
		Meta   map[string]interface{} `json:"meta"`
		At     time.Time              `json:"at"`
	}{
		RunID:  event.RunID,
		Seq:    event.Seq,
		StepID: event.StepID,
		Msg:    event.Msg,
		Meta:   event.Meta,
		At:     event.At,
	})
	if err != nil {
		// Fallback to error message if marshal fails
		fmt.Fprintf(l.writer, "{\"error\":\"failed to marshal event: %v\"}\n", err)
		return
	}

	fmt.Fprintf(l.writer, "%s\n", data)
}

// emitText writes the event as human-readable text.
func (l *LogEmitter) emitText(event Event) {
	// Format: [msg] runID=xxx seq=N stepID=yyy [meta=...]
	fmt.Fprintf(l.writer, "[%s] runID=%s seq=%d stepID=%s",
		event.Msg, event.RunID, event.Seq, event.StepID)

	if len(event.Meta) > 0 {
		// Marshal meta as JSON for readability
		metaJSON, err := json.Marshal(event.Meta)
		if err == nil {
			fmt.Fprintf(l.writer, " meta=%s", metaJSON)
		} else {
			fmt.Fprintf(l.writer, " meta=%v", event.Meta)
		}
	}

	fmt.Fprint(l.writer, "\n")
}
