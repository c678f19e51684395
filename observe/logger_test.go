package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// TestLogger_IncludesOpFields verifies codec-operation fields are present in log output.
func TestLogger_IncludesOpFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	meta := OpMeta{
		Op:          "decode",
		StructureID: "s1a2b3c4",
		Strategy:    "single-pass",
		LeafCount:   12,
	}

	opLogger := logger.WithOp(meta)
	opLogger.Info(context.Background(), "test message")

	output := buf.String()

	var logEntry map[string]any
	if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, output)
	}

	if v, ok := logEntry["codec.op"].(string); !ok || v != "decode" {
		t.Errorf("expected codec.op='decode', got %v", logEntry["codec.op"])
	}
	if v, ok := logEntry["codec.structure_id"].(string); !ok || v != "s1a2b3c4" {
		t.Errorf("expected codec.structure_id='s1a2b3c4', got %v", logEntry["codec.structure_id"])
	}
	if v, ok := logEntry["codec.strategy"].(string); !ok || v != "single-pass" {
		t.Errorf("expected codec.strategy='single-pass', got %v", logEntry["codec.strategy"])
	}
	if v, ok := logEntry["codec.leaf_count"].(float64); !ok || v != 12 {
		t.Errorf("expected codec.leaf_count=12, got %v", logEntry["codec.leaf_count"])
	}
}

// TestLogger_IncludesDuration verifies duration_ms field is present.
func TestLogger_IncludesDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	opLogger := logger.WithOp(OpMeta{Op: "encode"})
	opLogger.Info(context.Background(), "test message",
		Field{Key: "duration_ms", Value: 50.5},
	)

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}

	if v, ok := logEntry["duration_ms"].(float64); !ok || v != 50.5 {
		t.Errorf("expected duration_ms=50.5, got %v", logEntry["duration_ms"])
	}
}

// TestLogger_ErrorLevel verifies error log level and error field.
func TestLogger_ErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	opLogger := logger.WithOp(OpMeta{Op: "decode"})
	opLogger.Error(context.Background(), "reconstruction failed",
		Field{Key: "error", Value: "value count mismatch"},
	)

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}

	if v, ok := logEntry["level"].(string); !ok || v != "error" {
		t.Errorf("expected level='error', got %v", logEntry["level"])
	}
	if v, ok := logEntry["error"].(string); !ok || v != "value count mismatch" {
		t.Errorf("expected error='value count mismatch', got %v", logEntry["error"])
	}
}

// TestLogger_LeafValuesRedacted verifies leaf payloads never appear in log output.
func TestLogger_LeafValuesRedacted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	opLogger := logger.WithOp(OpMeta{Op: "encode"})
	opLogger.Info(context.Background(), "values extracted",
		Field{Key: "values", Value: []any{"alice", "secret_payload_123"}},
	)

	output := buf.String()

	if strings.Contains(output, "secret_payload_123") {
		t.Error("raw leaf values should be redacted, but found in output")
	}
	if !strings.Contains(output, "[REDACTED]") {
		t.Error("expected [REDACTED] marker in output")
	}
}

// TestLogger_LevelFiltering verifies log level filtering.
func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)

	opLogger := logger.WithOp(OpMeta{Op: "encode"})

	opLogger.Info(context.Background(), "info message")
	if strings.Contains(buf.String(), "info message") {
		t.Error("info message should be filtered when level is warn")
	}

	opLogger.Warn(context.Background(), "warn message")
	if !strings.Contains(buf.String(), "warn message") {
		t.Error("warn message should pass through when level is warn")
	}
}

// TestLogger_DebugLevel verifies debug level logging.
func TestLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)

	logger.Debug(context.Background(), "debug message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}

	if v, ok := logEntry["level"].(string); !ok || v != "debug" {
		t.Errorf("expected level='debug', got %v", logEntry["level"])
	}
}

// TestParseLogLevel verifies level parsing with fallback to info.
func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tc := range cases {
		if got := ParseLogLevel(tc.in); got != tc.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// TestNopLogger verifies the nop logger is safe and chainable.
func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Info(context.Background(), "dropped")
	logger.Error(context.Background(), "dropped")

	chained := logger.WithOp(OpMeta{Op: "encode"})
	if chained == nil {
		t.Fatal("WithOp on nop logger returned nil")
	}
	chained.Warn(context.Background(), "dropped")
}
