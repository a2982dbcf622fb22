package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/pickwise/internal/model"
)

func TestRenderAll(t *testing.T) {
	history := []model.Combination{{1, 2, 3, 4}, {4, 3, 2, 1}, {1, 1, 1, 1}, {9, 9, 9, 9}}
	a := Analyze(history, 4, 1)

	var buf bytes.Buffer
	if err := RenderAll(&buf, a, 60); err != nil {
		t.Fatalf("RenderAll failed: %v", err)
	}
	out := buf.String()
	for _, needle := range []string{"Summary", "Game: Pick 4", "Draws: 4", "Overdue Sums", "Overdue Pairs", "Sum Frequencies", "Digit Heat Map", "Pos 4"} {
		if !strings.Contains(out, needle) {
			t.Fatalf("expected %q in output:\n%s", needle, out)
		}
	}
	if !strings.Contains(out, barChar) {
		t.Fatalf("expected histogram bars in output")
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderAll(&buf, Analyze(nil, 3, 20), 80); err != nil {
		t.Fatalf("RenderAll failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No draws loaded." {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderPicks(t *testing.T) {
	picks := []model.Pick{
		{Combo: model.Combination{1, 2, 3}, HotPair: true, OverdueSum: true},
		{Combo: model.Combination{0, 0, 0}, Fallback: true},
	}
	var buf bytes.Buffer
	if err := RenderPicks(&buf, picks); err != nil {
		t.Fatalf("RenderPicks failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "123  hot pair, overdue sum") {
		t.Fatalf("expected reasons for 123 in output:\n%s", out)
	}
	if !strings.Contains(out, "000  fallback") {
		t.Fatalf("expected fallback marker in output:\n%s", out)
	}
}

func TestBarScales(t *testing.T) {
	if got := bar(5, 10, 10); got != "#####" {
		t.Fatalf("unexpected bar: %q", got)
	}
	if got := bar(1, 1000, 10); got != "#" {
		t.Fatalf("expected minimum bar, got %q", got)
	}
	if got := bar(0, 10, 10); got != "" {
		t.Fatalf("expected empty bar, got %q", got)
	}
}

func TestRenderHeatMapTopRow(t *testing.T) {
	history := []model.Combination{{1, 2}, {1, 3}, {2, 3}}
	var buf bytes.Buffer
	if err := RenderHeatMap(&buf, Analyze(history, 2, 20)); err != nil {
		t.Fatalf("RenderHeatMap failed: %v", err)
	}
	if got := topRow(t, buf.String()); strings.Join(got, " ") != "Top 1 3" {
		t.Fatalf("unexpected top row: %v", got)
	}

	buf.Reset()
	if err := RenderHeatMap(&buf, Analyze(nil, 2, 20)); err != nil {
		t.Fatalf("RenderHeatMap failed: %v", err)
	}
	if got := topRow(t, buf.String()); strings.Join(got, " ") != "Top - -" {
		t.Fatalf("unexpected top row for empty history: %v", got)
	}
}

func topRow(t *testing.T, out string) []string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == "Top" {
			return fields
		}
	}
	t.Fatalf("no top row in output:\n%s", out)
	return nil
}
