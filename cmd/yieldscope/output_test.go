package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yieldScope/internal/model"
)

var sample = []model.Strategy{
	{ID: "b", Name: "AO/wAR", APYDisplay: "5.48%", TVLDisplay: "$100.00k", Risk: model.NewRiskAssessment(model.RiskVeryLow)},
	{ID: "c", Name: "FOO/BAR", APYDisplay: "54.75%", TVLDisplay: "$100.00k", Risk: model.NewRiskAssessment(model.RiskHigh)},
}

func TestWriteStrategiesTable(t *testing.T) {
	var buf bytes.Buffer
	if err := writeStrategies(&buf, "table", sample); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "RANK") || !strings.Contains(lines[1], "AO/wAR") || !strings.Contains(lines[2], "High") {
		t.Fatalf("unexpected table: %q", buf.String())
	}
}

func TestWriteStrategiesJSONL(t *testing.T) {
	var buf bytes.Buffer
	if err := writeStrategies(&buf, "jsonl", sample); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var first model.Strategy
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first != sample[0] {
		t.Fatalf("round trip mismatch: %+v", first)
	}
}

func TestOpenOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "ranked.json")
	out, err := openOutput(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := writeStrategies(out, "json", sample); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got []model.Strategy
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[1].ID != "c" {
		t.Fatalf("unexpected file content: %+v", got)
	}
}

func TestFindStrategy(t *testing.T) {
	if s, ok := findStrategy(sample, "c"); !ok || s.Name != "FOO/BAR" {
		t.Fatalf("expected to find c, got %+v %v", s, ok)
	}
	if _, ok := findStrategy(sample, "zzz"); ok {
		t.Fatalf("unexpected match")
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger("debug"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := newLogger("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
