/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{TraceLevel, "TRACE"},
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(999), "UNKNOWN"},
	}

	for _, test := range tests {
		if result := test.level.String(); result != test.expected {
			t.Errorf("Level.String() = %v, expected %v", result, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"trace", TraceLevel, false},
		{"DEBUG", DebugLevel, false},
		{" info ", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"loud", InfoLevel, true},
	}

	for _, test := range tests {
		got, err := ParseLevel(test.in)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", test.in, err, test.wantErr)
		}
		if got != test.want {
			t.Errorf("ParseLevel(%q) = %v, expected %v", test.in, got, test.want)
		}
	}
}

func TestInitializeSetsDefault(t *testing.T) {
	var buf bytes.Buffer
	if err := Initialize(Config{Level: InfoLevel, Component: "cargo-override", Output: &buf}); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	t.Cleanup(func() { defaultLogger = nil })

	Info("manifest written", String("path", "Cargo.toml"))
	Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "cargo-override: manifest written {path=Cargo.toml}") {
		t.Errorf("unexpected output: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %q", out)
	}
}

func TestFormatPretty(t *testing.T) {
	entry := LogEntry{
		Time:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Level:     "INFO",
		Message:   "override added",
		Component: "cargo-override",
		Fields:    map[string]interface{}{"registry": "crates-io", "name": "serde"},
	}

	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name:   "plain",
			config: Config{},
			want:   "2025-01-01 12:00:00 [INFO] cargo-override: override added {name=serde, registry=crates-io}",
		},
		{
			name:   "no-op",
			config: Config{NoOp: true},
			want:   "2025-01-01 12:00:00 [INFO] cargo-override: [NO-OP] override added {name=serde, registry=crates-io}",
		},
		{
			name:   "color",
			config: Config{UseColor: true},
			want:   "2025-01-01 12:00:00 [\033[32mINFO\033[0m] cargo-override: override added {name=serde, registry=crates-io}",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l := New(test.config)
			if got := l.formatPretty(entry); got != test.want {
				t.Errorf("formatPretty() = %q, expected %q", got, test.want)
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: TraceLevel, JSON: true, Component: "cargo-override", Output: &buf})

	l.Log(WarnLevel, "manifest unchanged", Bool("no_op", true), Int("depth", 3), Err(errors.New("boom")))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not json: %v: %q", err, buf.String())
	}
	if entry.Level != "WARN" || entry.Message != "manifest unchanged" || entry.Component != "cargo-override" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Fields["error"] != "boom" || entry.Fields["no_op"] != true || entry.Fields["depth"] != float64(3) {
		t.Errorf("unexpected fields: %+v", entry.Fields)
	}
}

func TestDebugRecordsCaller(t *testing.T) {
	var buf bytes.Buffer
	if err := Initialize(Config{Level: DebugLevel, Output: &buf}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { defaultLogger = nil })

	Debug("searching", Strings("members", []string{"a", "b"}))

	out := buf.String()
	if !strings.Contains(out, "members=a,b") {
		t.Errorf("missing field: %q", out)
	}
	if !strings.Contains(out, "logger_test.go:") {
		t.Errorf("missing caller location: %q", out)
	}
}

func TestSetOutput(t *testing.T) {
	if err := Initialize(Config{Level: InfoLevel}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { defaultLogger = nil })

	var buf bytes.Buffer
	SetOutput(&buf)
	Warn("redirected")

	if !strings.Contains(buf.String(), "redirected") {
		t.Errorf("SetOutput did not redirect: %q", buf.String())
	}
}

func TestErrNil(t *testing.T) {
	if f := Err(nil); f.Value != "<nil>" {
		t.Errorf("Err(nil) = %v", f.Value)
	}
}
