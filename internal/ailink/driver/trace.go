package driver

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/viralstrategist/viralstrategist/internal/ailink/content"
)

// TraceEntry is one NDJSON line describing a provider call.
//
// Binary attachments are summarised by type and size only; their bytes and
// any credential never reach the trace file.
type TraceEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Driver     string            `json:"driver"`
	Model      string            `json:"model,omitempty"`
	PromptSlug string            `json:"prompt_slug,omitempty"`
	Attempt    int               `json:"attempt,omitempty"`
	Messages   []TraceMessage    `json:"messages,omitempty"`
	Response   string            `json:"response,omitempty"`
	StatusCode int               `json:"status_code,omitempty"`
	Error      string            `json:"error,omitempty"`
	DurationMs int64             `json:"duration_ms"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// TraceMessage is the redacted form of a request message.
type TraceMessage struct {
	Role        string            `json:"role"`
	Text        string            `json:"text,omitempty"`
	Attachments []TraceAttachment `json:"attachments,omitempty"`
}

// TraceAttachment records an inline attachment without its payload.
type TraceAttachment struct {
	Type  string `json:"type"`
	Bytes int    `json:"bytes"`
}

// Tracer appends trace entries to a file.
type Tracer struct {
	file *os.File
	mu   sync.Mutex
}

var (
	globalTracer *Tracer
	tracerMu     sync.Mutex
)

// EnableTracing starts tracing to the specified file path.
// Returns a cleanup function that should be called to close the file.
func EnableTracing(path string) (func(), error) {
	tracerMu.Lock()
	defer tracerMu.Unlock()

	if globalTracer != nil {
		_ = globalTracer.Close()
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}

	globalTracer = &Tracer{file: f}
	return DisableTracing, nil
}

// DisableTracing stops tracing and closes the trace file.
func DisableTracing() {
	tracerMu.Lock()
	defer tracerMu.Unlock()
	if globalTracer != nil {
		_ = globalTracer.Close()
		globalTracer = nil
	}
}

// IsTracingEnabled returns true if tracing is active.
func IsTracingEnabled() bool {
	tracerMu.Lock()
	defer tracerMu.Unlock()
	return globalTracer != nil
}

// TraceCall records a completed call if tracing is enabled.
func TraceCall(driverName string, req *Request, attempt int, resp *Response, err error, elapsed time.Duration) {
	if !IsTracingEnabled() {
		return
	}

	entry := TraceEntry{
		Driver:     driverName,
		Attempt:    attempt,
		DurationMs: elapsed.Milliseconds(),
	}
	if req != nil {
		entry.Model = req.Model
		entry.PromptSlug = req.PromptSlug
		entry.Metadata = req.Metadata
		entry.Messages = redactMessages(req.Messages)
	}
	if resp != nil {
		entry.Response = resp.Text()
	}
	if err != nil {
		entry.Error = err.Error()
		if perr, ok := err.(*ProviderError); ok {
			entry.StatusCode = perr.StatusCode
		}
	}
	Trace(entry)
}

func redactMessages(messages []content.Message) []TraceMessage {
	out := make([]TraceMessage, 0, len(messages))
	for _, msg := range messages {
		tm := TraceMessage{Role: msg.Role}
		for _, block := range msg.Content {
			if block.IsText() {
				if tm.Text != "" {
					tm.Text += "\n"
				}
				tm.Text += block.Text
				continue
			}
			tm.Attachments = append(tm.Attachments, TraceAttachment{Type: string(block.Type), Bytes: len(block.Data)})
		}
		out = append(out, tm)
	}
	return out
}

// Trace records a trace entry if tracing is enabled.
func Trace(entry TraceEntry) {
	tracerMu.Lock()
	t := globalTracer
	tracerMu.Unlock()

	if t == nil {
		return
	}
	t.Write(entry)
}

// Write records a trace entry.
func (t *Tracer) Write(entry TraceEntry) {
	if t == nil || t.file == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = t.file.Write(append(data, '\n'))
}

// Close closes the trace file.
func (t *Tracer) Close() error {
	if t == nil || t.file == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Close()
}
