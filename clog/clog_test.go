package clog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// newBufferLogger 返回写入缓冲区的 JSON logger
func newBufferLogger(t *testing.T, level string, opts ...Option) (Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger, err := New(&Config{Level: level, Format: "json"}, append(opts, WithBuffer(buf))...)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return logger, buf
}

// lastEntry 反序列化缓冲区中最后一条日志
func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	entry := map[string]any{}
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("invalid log line %q: %v", lines[len(lines)-1], err)
	}
	return entry
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(t, "warn")

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() != 0 {
		t.Fatalf("expected debug/info to be filtered, got %q", buf.String())
	}

	logger.Warn("warn message")
	if buf.Len() == 0 {
		t.Fatal("expected warn to pass the filter")
	}
}

func TestSetLevel(t *testing.T) {
	logger, buf := newBufferLogger(t, "info")

	logger.Debug("before")
	if buf.Len() != 0 {
		t.Fatal("expected debug to be filtered at info level")
	}

	if err := logger.SetLevel(DebugLevel); err != nil {
		t.Fatalf("set level failed: %v", err)
	}
	logger.Debug("after")
	if buf.Len() == 0 {
		t.Fatal("expected debug to pass after SetLevel")
	}
}

func TestNamespace(t *testing.T) {
	logger, buf := newBufferLogger(t, "info", WithNamespace("server"))

	logger.WithNamespace("api").Info("request")

	entry := lastEntry(t, buf)
	if entry[NamespaceKey] != "server.api" {
		t.Errorf("expected namespace server.api, got %v", entry[NamespaceKey])
	}
}

func TestFields(t *testing.T) {
	logger, buf := newBufferLogger(t, "info")

	logger.With(String("component", "store")).Info("op done",
		Int64("value", 123456789),
		Error(errors.New("boom")),
	)

	entry := lastEntry(t, buf)
	if entry["component"] != "store" {
		t.Errorf("expected component field, got %v", entry["component"])
	}
	if entry["value"] != float64(123456789) {
		t.Errorf("expected value field, got %v", entry["value"])
	}
	if entry["err_msg"] != "boom" {
		t.Errorf("expected err_msg field, got %v", entry["err_msg"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{input: "debug", want: DebugLevel},
		{input: "INFO", want: InfoLevel},
		{input: "Warn", want: WarnLevel},
		{input: "error", want: ErrorLevel},
		{input: "fatal", want: FatalLevel},
		{input: "trace", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
