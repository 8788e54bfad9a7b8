package tracing

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// FileExporter writes one RegistrationRecord per span to a JSONL file.
// Registry attributes are lifted to top-level fields, so dropped
// registrations can be listed with e.g.
//
//	jq 'select(.outcome == "parent_missing") | .path' traces.jsonl
type FileExporter struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewFileExporter opens path for appending, creating parent directories.
func NewFileExporter(path string) (*FileExporter, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- path is cleaned above
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return &FileExporter{file: file, enc: json.NewEncoder(file)}, nil
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *FileExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	if len(spans) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.file == nil {
		return fmt.Errorf("exporter is shut down")
	}
	for _, span := range spans {
		if err := e.enc.Encode(NewRegistrationRecord(span)); err != nil {
			return fmt.Errorf("encode span: %w", err)
		}
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter. It is idempotent.
func (e *FileExporter) Shutdown(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.file == nil {
		return nil
	}
	err := e.file.Close()
	e.file = nil
	return err
}

// RegistrationRecord is the JSON line written for each span.
type RegistrationRecord struct {
	TraceID      string  `json:"trace_id"`
	SpanID       string  `json:"span_id"`
	ParentSpanID string  `json:"parent_span_id,omitempty"`
	Name         string  `json:"name"`
	StartTime    string  `json:"start_time"`
	DurationMs   float64 `json:"duration_ms"`

	Session string `json:"session,omitempty"`
	// Path is the registered path. For registrations that never reached the
	// tree it is the path that was attempted.
	Path    string `json:"path,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	Dropped bool   `json:"dropped,omitempty"`
	Error   string `json:"error,omitempty"`

	// Attributes holds whatever was not lifted, e.g. layout counters.
	Attributes map[string]any `json:"attributes,omitempty"`
	Events     []string       `json:"events,omitempty"`
}

// NewRegistrationRecord flattens span into a RegistrationRecord.
func NewRegistrationRecord(span sdktrace.ReadOnlySpan) RegistrationRecord {
	sc := span.SpanContext()
	rec := RegistrationRecord{
		TraceID:    sc.TraceID().String(),
		SpanID:     sc.SpanID().String(),
		Name:       span.Name(),
		StartTime:  span.StartTime().Format(time.RFC3339Nano),
		DurationMs: float64(span.EndTime().Sub(span.StartTime()).Microseconds()) / 1000.0,
	}
	if span.Parent().IsValid() {
		rec.ParentSpanID = span.Parent().SpanID().String()
	}

	var parent, child string
	for _, kv := range span.Attributes() {
		switch kv.Key {
		case AttrSessionID:
			rec.Session = kv.Value.AsString()
		case AttrFormPath:
			rec.Path = kv.Value.AsString()
		case AttrFormParent:
			parent = kv.Value.AsString()
		case AttrFormChild:
			child = kv.Value.AsString()
		case AttrNodeKind:
			rec.Kind = kv.Value.AsString()
		case AttrOutcome:
			rec.Outcome = kv.Value.AsString()
		case AttrErrorMessage:
			rec.Error = kv.Value.AsString()
		default:
			if rec.Attributes == nil {
				rec.Attributes = make(map[string]any)
			}
			rec.Attributes[string(kv.Key)] = kv.Value.AsInterface()
		}
	}
	if span.Name() == SpanRegisterElement && child != "" {
		rec.Path = child
		if parent != "" {
			rec.Path = parent + "." + child
		}
	}

	for _, ev := range span.Events() {
		rec.Events = append(rec.Events, ev.Name)
		if ev.Name == EventRegistrationDropped {
			rec.Dropped = true
		}
	}
	if span.Status().Code == codes.Error && rec.Error == "" {
		rec.Error = span.Status().Description
	}
	return rec
}
