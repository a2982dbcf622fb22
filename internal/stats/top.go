package stats

import (
	"sort"

	"github.com/verte-zerg/pickwise/internal/model"
)

// DigitCount is a digit and how often it appeared at a position.
type DigitCount struct {
	Digit int
	Count int
}

// TopDigits returns the n most frequent digits for each position.
func TopDigits(a model.Analysis, n int) [][]DigitCount {
	if n <= 0 || len(a.PositionFreq) == 0 {
		return nil
	}
	out := make([][]DigitCount, len(a.PositionFreq))
	for pos, freq := range a.PositionFreq {
		items := make([]DigitCount, 0, len(freq))
		for digit, count := range freq {
			items = append(items, DigitCount{Digit: digit, Count: count})
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].Count == items[j].Count {
				return items[i].Digit < items[j].Digit
			}
			return items[i].Count > items[j].Count
		})
		if len(items) > n {
			items = items[:n]
		}
		out[pos] = items
	}
	return out
}

// SortedSums returns the sums present in the table in ascending order.
func SortedSums(freq map[int]int) []int {
	sums := make([]int, 0, len(freq))
	for sum := range freq {
		sums = append(sums, sum)
	}
	sort.Ints(sums)
	return sums
}
