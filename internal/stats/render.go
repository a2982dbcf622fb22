package stats

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/verte-zerg/pickwise/internal/model"
)

const (
	terminalWidthBackup = 80
	minBarWidth         = 10
	barChar             = "#"
)

// TerminalWidth returns the width of stdout, or a fallback when stdout is not
// a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderSummary prints headline numbers for an analysis.
func RenderSummary(w io.Writer, a model.Analysis) error {
	if a.Draws == 0 {
		_, err := fmt.Fprintln(w, "No draws loaded.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Game: Pick %d", a.Length),
		fmt.Sprintf("Draws: %s", humanize.Comma(int64(a.Draws))),
		fmt.Sprintf("Recent window: %d", a.Window),
		fmt.Sprintf("Distinct sums: %d", len(a.SumFreq)),
		fmt.Sprintf("Distinct pairs: %d", len(a.PairFreq)),
		fmt.Sprintf("Overdue sums: %d", len(a.OverdueSums)),
		fmt.Sprintf("Overdue pairs: %d", len(a.OverduePairs)),
		"",
	}
	return writeLines(w, lines)
}

// RenderOverdue prints overdue sums and pairs, most frequent first.
func RenderOverdue(w io.Writer, a model.Analysis, width int) error {
	sums := make([]string, len(a.OverdueSums))
	for i, s := range a.OverdueSums {
		sums[i] = strconv.Itoa(s)
	}
	if err := writeSection(w, "Overdue Sums", formatGrid(sums, 10, width), "None."); err != nil {
		return err
	}
	return writeSection(w, "Overdue Pairs", formatGrid(a.OverduePairs, 4, width), "None.")
}

// RenderSumFrequencies prints the sum frequency table with a bar per sum.
func RenderSumFrequencies(w io.Writer, a model.Analysis, width int) error {
	if len(a.SumFreq) == 0 {
		return writeSection(w, "Sum Frequencies", nil, "No sums recorded.")
	}
	sums := SortedSums(a.SumFreq)
	maxCount := 0
	for _, s := range sums {
		if a.SumFreq[s] > maxCount {
			maxCount = a.SumFreq[s]
		}
	}
	rows := make([][]string, 0, len(sums))
	for _, s := range sums {
		count := a.SumFreq[s]
		rows = append(rows, []string{
			strconv.Itoa(s),
			humanize.Comma(int64(count)),
			fmt.Sprintf("%.1f%%", share(count, a.Draws)),
		})
	}
	lines := formatTable([]string{"Sum", "Count", "Share"}, rows, map[int]bool{0: true, 1: true, 2: true})

	barWidth := minBarWidth
	if width > 0 && len(lines) > 0 {
		if avail := width - displayWidth(lines[0]) - 1; avail > barWidth {
			barWidth = avail
		}
	}
	for i, s := range sums {
		lines[i+1] += " " + bar(a.SumFreq[s], maxCount, barWidth)
	}
	return writeSection(w, "Sum Frequencies", lines, "")
}

// RenderHeatMap prints digit counts per position, one row per digit, followed
// by the most frequent digit at each position.
func RenderHeatMap(w io.Writer, a model.Analysis) error {
	if len(a.PositionFreq) == 0 {
		return writeSection(w, "Digit Heat Map", nil, "No positions.")
	}
	headers := make([]string, 0, len(a.PositionFreq)+1)
	headers = append(headers, "Digit")
	rightAlign := map[int]bool{}
	for i := range a.PositionFreq {
		headers = append(headers, fmt.Sprintf("Pos %d", i+1))
		rightAlign[i+1] = true
	}
	rows := make([][]string, 0, 10)
	for digit := 0; digit <= 9; digit++ {
		row := []string{strconv.Itoa(digit)}
		for _, freq := range a.PositionFreq {
			row = append(row, humanize.Comma(int64(freq[digit])))
		}
		rows = append(rows, row)
	}
	top := []string{"Top"}
	for _, digits := range TopDigits(a, 1) {
		if len(digits) == 0 {
			top = append(top, "-")
			continue
		}
		top = append(top, strconv.Itoa(digits[0].Digit))
	}
	rows = append(rows, top)
	return writeSection(w, "Digit Heat Map", formatTable(headers, rows, rightAlign), "")
}

// RenderPicks prints generated picks and the predicates each one satisfied.
func RenderPicks(w io.Writer, picks []model.Pick) error {
	if len(picks) == 0 {
		return writeSection(w, "Smart Picks", nil, "No picks generated.")
	}
	rows := make([][]string, 0, len(picks))
	for _, p := range picks {
		rows = append(rows, []string{p.Combo.String(), PickReasons(p)})
	}
	return writeSection(w, "Smart Picks", formatTable([]string{"Pick", "Why"}, rows, nil), "")
}

// PickReasons describes why a pick was accepted.
func PickReasons(p model.Pick) string {
	if p.Fallback {
		return "fallback"
	}
	var reasons []string
	if p.HotPair {
		reasons = append(reasons, "hot pair")
	}
	if p.OverdueSum {
		reasons = append(reasons, "overdue sum")
	}
	if p.StrongPos {
		reasons = append(reasons, "strong positions")
	}
	return strings.Join(reasons, ", ")
}

// RenderAll prints every analysis section.
func RenderAll(w io.Writer, a model.Analysis, width int) error {
	if err := RenderSummary(w, a); err != nil {
		return err
	}
	if a.Draws == 0 {
		return nil
	}
	if err := RenderOverdue(w, a, width); err != nil {
		return err
	}
	if err := RenderSumFrequencies(w, a, width); err != nil {
		return err
	}
	return RenderHeatMap(w, a)
}

func writeSection(w io.Writer, title string, lines []string, empty string) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if len(lines) == 0 && empty != "" {
		lines = []string{empty}
	}
	if err := writeLines(w, lines); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func share(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func bar(count, maxCount, width int) string {
	if maxCount <= 0 || width <= 0 || count <= 0 {
		return ""
	}
	n := count * width / maxCount
	if n < 1 {
		n = 1
	}
	return strings.Repeat(barChar, n)
}
