package tui

import (
	"strings"
	"testing"
)

func TestFitLinesPadsAndClips(t *testing.T) {
	out := fitLines("ab\ncd\nef", 4, 2)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "ab  " || lines[1] != "cd  " {
		t.Fatalf("unexpected lines: %q", lines)
	}

	out = fitLines("x", 2, 3)
	if out != "x \n  \n  " {
		t.Fatalf("unexpected padded output: %q", out)
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("Draws: 1,234", 8); got != "Draws..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncateLine("short", 10); got != "short" {
		t.Fatalf("expected untouched line, got %q", got)
	}
	if got := truncateLine("abcdef", 2); got != "ab" {
		t.Fatalf("unexpected narrow truncation: %q", got)
	}
}

func TestModalWidthBounds(t *testing.T) {
	if got := modalWidth(20); got != 40 {
		t.Fatalf("expected minimum modal width 40, got %d", got)
	}
	if got := modalWidth(200); got != 80 {
		t.Fatalf("expected maximum modal width 80, got %d", got)
	}
}
