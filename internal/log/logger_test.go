package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "text", Output: &buf, Component: ComponentWorker})

	logger.Info("started")

	out := buf.String()
	if !strings.Contains(out, "component=worker") {
		t.Errorf("expected component attribute in output, got %q", out)
	}
	if logger.Component() != ComponentWorker {
		t.Errorf("expected component %q, got %q", ComponentWorker, logger.Component())
	}
}

func TestWithComponentRetags(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Component: ComponentApp}).WithComponent(ComponentHTTP)

	logger.Warn("slow request")

	if !strings.Contains(buf.String(), "component=http") {
		t.Errorf("expected http component, got %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf, Component: ComponentStorage})

	logger.Error("open failed", FieldError, "no such file")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record[FieldComponent] != "storage" {
		t.Errorf("expected component storage, got %v", record[FieldComponent])
	}
	if record[FieldError] != "no such file" {
		t.Errorf("expected error attribute, got %v", record[FieldError])
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg := FromEnv()
	if cfg.Level != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected json format, got %q", cfg.Format)
	}

	t.Setenv("LOG_LEVEL", "nonsense")
	t.Setenv("LOG_FORMAT", "")
	cfg = FromEnv()
	if cfg.Level != slog.LevelInfo || cfg.Format != "text" {
		t.Errorf("expected defaults for unknown values, got %v/%q", cfg.Level, cfg.Format)
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestStructuredAuditRecords(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))

	sl.LogEntryCreated(context.Background(), "Spesa settimanale", 82.5, "EUR", "Cibo", "sheet:12")
	sl.LogRateSaved(context.Background(), "USD", "EUR", 0.9)
	sl.LogBudgetDeactivated(context.Background(), 7)

	out := buf.String()
	for _, want := range []string{
		"component=ledger",
		"operation=create",
		"report_ref=sheet:12",
		"base=USD",
		"operation=deactivate",
		"budget_id=7",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in audit output, got %q", want, out)
		}
	}
}
