// Package stats contains draw statistics and reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/pickwise/internal/model"
)

// Analyze builds sum, pair and per-position frequency tables over the full
// history, and the overdue sums and pairs relative to the last window draws.
// Tables are rebuilt from scratch on every call. An empty history yields empty
// tables and length empty position maps.
func Analyze(history []model.Combination, length, window int) model.Analysis {
	if length < 0 {
		length = 0
	}
	a := model.Analysis{
		Length:       length,
		Draws:        len(history),
		Window:       window,
		SumFreq:      map[int]int{},
		PairFreq:     map[string]int{},
		PositionFreq: make([]map[int]int, length),
	}
	for i := range a.PositionFreq {
		a.PositionFreq[i] = map[int]int{}
	}

	for _, combo := range history {
		a.SumFreq[combo.Sum()]++
		for _, pair := range combo.Pairs() {
			a.PairFreq[pair]++
		}
		for i, d := range combo {
			if i >= length {
				break
			}
			a.PositionFreq[i][d]++
		}
	}

	recent := RecentWindow(history, window)
	a.OverdueSums = overdueSums(a.SumFreq, SeenSums(recent))
	a.OverduePairs = overduePairs(a.PairFreq, SeenPairs(recent))
	return a
}

// RecentWindow returns the last window draws, or all of them when the history
// is shorter or window <= 0. The result aliases history.
func RecentWindow(history []model.Combination, window int) []model.Combination {
	if window <= 0 || len(history) <= window {
		return history
	}
	return history[len(history)-window:]
}

// SeenSums returns the set of sums present in draws.
func SeenSums(draws []model.Combination) map[int]struct{} {
	seen := make(map[int]struct{}, len(draws))
	for _, combo := range draws {
		seen[combo.Sum()] = struct{}{}
	}
	return seen
}

// SeenPairs returns the set of pair keys present in draws.
func SeenPairs(draws []model.Combination) map[string]struct{} {
	seen := map[string]struct{}{}
	for _, combo := range draws {
		for _, pair := range combo.Pairs() {
			seen[pair] = struct{}{}
		}
	}
	return seen
}

func overdueSums(freq map[int]int, seen map[int]struct{}) []int {
	out := make([]int, 0, len(freq))
	for sum := range freq {
		if _, ok := seen[sum]; !ok {
			out = append(out, sum)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if freq[out[i]] == freq[out[j]] {
			return out[i] < out[j]
		}
		return freq[out[i]] > freq[out[j]]
	})
	return out
}

func overduePairs(freq map[string]int, seen map[string]struct{}) []string {
	out := make([]string, 0, len(freq))
	for pair := range freq {
		if _, ok := seen[pair]; !ok {
			out = append(out, pair)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if freq[out[i]] == freq[out[j]] {
			return out[i] < out[j]
		}
		return freq[out[i]] > freq[out[j]]
	})
	return out
}
