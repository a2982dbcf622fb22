package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/pickwise/internal/model"
	"github.com/verte-zerg/pickwise/internal/stats"
)

func TestValidateConfig(t *testing.T) {
	valid := model.Config{Length: 4, Window: 20, Picks: 10, MaxAttempts: 0}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("validateConfig(valid) error: %v", err)
	}

	cases := []model.Config{
		{Length: 2, Window: 20, Picks: 10},
		{Length: 6, Window: 20, Picks: 10},
		{Length: 4, Window: 0, Picks: 10},
		{Length: 4, Window: 20, Picks: 0},
		{Length: 4, Window: 20, Picks: 10, MaxAttempts: -1},
	}
	for _, cfg := range cases {
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestApplyIntConfig(t *testing.T) {
	var target int
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVar(&target, "window", 20, "")

	value := 30
	applyIntConfig(cmd, "window", &target, &value)
	if target != 30 {
		t.Fatalf("expected config value 30, got %d", target)
	}

	applyIntConfig(cmd, "window", &target, nil)
	if target != 30 {
		t.Fatalf("nil config value changed target to %d", target)
	}

	if err := cmd.Flags().Set("window", "5"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	applyIntConfig(cmd, "window", &target, &value)
	if target != 5 {
		t.Fatalf("expected explicit flag 5 to win, got %d", target)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg struct {
		Analyzer map[string]any `toml:"analyzer"`
		Log      map[string]any `toml:"log"`
	}
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if len(cfg.Analyzer) != 0 || len(cfg.Log) != 0 {
		t.Fatalf("expected all template values commented out, got %v %v", cfg.Analyzer, cfg.Log)
	}
}

func TestWriteReportFormats(t *testing.T) {
	history := []model.Combination{{1, 2, 3, 4}, {4, 3, 2, 1}, {0, 0, 0, 0}}
	a := stats.Analyze(history, 4, 20)

	var buf bytes.Buffer
	if err := writeReport(&buf, a, "json"); err != nil {
		t.Fatalf("json report: %v", err)
	}
	if !strings.Contains(buf.String(), `"draws": 3`) {
		t.Fatalf("json report missing draws: %s", buf.String())
	}

	buf.Reset()
	if err := writeReport(&buf, a, "YAML"); err != nil {
		t.Fatalf("yaml report: %v", err)
	}
	if !strings.Contains(buf.String(), "draws: 3") {
		t.Fatalf("yaml report missing draws: %s", buf.String())
	}

	buf.Reset()
	if err := writeReport(&buf, a, "text"); err != nil {
		t.Fatalf("text report: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("text report is empty")
	}

	if err := writeReport(&buf, a, "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestWriteBatches(t *testing.T) {
	var buf bytes.Buffer
	if err := writeBatches(&buf, nil); err != nil {
		t.Fatalf("writeBatches(nil): %v", err)
	}
	if !strings.Contains(buf.String(), "No picks generated yet.") {
		t.Fatalf("unexpected empty output: %q", buf.String())
	}

	buf.Reset()
	batches := []model.PickBatch{{
		ID:        7,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
		Length:    3,
		Picks:     []model.Pick{{Combo: model.Combination{1, 2, 3}, HotPair: true}},
	}}
	if err := writeBatches(&buf, batches); err != nil {
		t.Fatalf("writeBatches: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Batch 7") || !strings.Contains(out, "123") {
		t.Fatalf("unexpected batch output: %s", out)
	}
}
