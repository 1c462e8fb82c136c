package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "test-svc", buf)
}

func decodeLine(t *testing.T, line string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid json log line %q: %v", line, err)
	}
	return m
}

func TestNewWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "info")
	l.WithComponent("executor").Info("classified", Fields(FieldTopology, "direct", FieldRecords, 3))

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["message"] != "classified" {
		t.Errorf("expected message 'classified', got %v", m["message"])
	}
	if m[FieldComponent] != "executor" {
		t.Errorf("expected component executor, got %v", m[FieldComponent])
	}
	if m[FieldTopology] != "direct" {
		t.Errorf("expected topology direct, got %v", m[FieldTopology])
	}
	if m["service"] != "test-svc" {
		t.Errorf("expected service test-svc, got %v", m["service"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "warn")
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "loud")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("expected only the info line, got %q", buf.String())
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf, "info").WithError(errors.New("boom")).Error("failed")
	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m[FieldError] != "boom" {
		t.Errorf("expected error field boom, got %v", m[FieldError])
	}
}

func TestNop(t *testing.T) {
	Nop().WithComponent("x").Error("nothing")
}

func TestFields_OddArgs(t *testing.T) {
	f := Fields("a", 1, "b")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("expected only a=1, got %v", f)
	}
}

func TestMergeWithDuration(t *testing.T) {
	f := MergeWithDuration(nil, 1500*time.Millisecond)
	if f[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500, got %v", f[FieldDuration])
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", func() Config { c := Config{}; c.ApplyDefaults(); return c }(), false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
		{"bad output", Config{Level: "info", Format: "json", Output: "syslog"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestLevelTag(t *testing.T) {
	tests := []struct {
		level   string
		noColor bool
		want    string
	}{
		{"info", true, "[INF]"},
		{"warn", true, "[WRN]"},
		{"error", false, "\033[31m[ERR]\033[0m"},
		{"panic", true, "[FTL]"},
		{"custom", false, "[CUSTOM]"},
	}
	for _, tt := range tests {
		if got := levelTag(tt.level, tt.noColor); got != tt.want {
			t.Errorf("levelTag(%q, %v) = %q, want %q", tt.level, tt.noColor, got, tt.want)
		}
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&Config{Level: "info", Format: FormatConsole, NoColor: true}, "fruit", &buf)
	log.WithComponent("executor").Info("routed", Fields(FieldRecords, 3))

	out := buf.String()
	for _, want := range []string{"[INF]", "routed", "records:3", "component:executor"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "fruit") {
		t.Errorf("service must be excluded from console output: %q", out)
	}
}
