// Package generator builds candidate picks biased toward overdue statistics.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/pickwise/internal/model"
	"github.com/verte-zerg/pickwise/internal/stats"
)

// Source provides random integers.
type Source interface {
	// Intn returns a random int in [0, n).
	Intn(n int) int
}

// Options controls a generation run.
type Options struct {
	Count  int
	Window int
	// MaxAttempts caps the number of candidates drawn. Zero means unbounded.
	MaxAttempts int
}

// Result is the outcome of a generation run.
type Result struct {
	Picks    []model.Pick
	Attempts int
	// Exhausted reports that MaxAttempts ran out and at least one candidate
	// was accepted as a fallback.
	Exhausted bool
}

// Generator produces randomized picks.
type Generator struct {
	rnd Source
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewWithSource returns a Generator drawing from src.
func NewWithSource(src Source) *Generator {
	return &Generator{rnd: src}
}

// Generate draws uniformly random combinations of the given length and keeps
// the ones that have a pair unseen in the recent window, a sum unseen in the
// recent window, or a digit at every position seen more than once in
// positionFreq. A nil positionFreq disables the last predicate. A length <= 0
// yields no picks.
func (g *Generator) Generate(history []model.Combination, length int, positionFreq []map[int]int, opts Options) Result {
	if length <= 0 {
		return Result{}
	}
	count := opts.Count
	if count <= 0 {
		count = model.DefaultPicks
	}
	window := opts.Window
	if window <= 0 {
		window = model.DefaultWindow
	}
	recent := stats.RecentWindow(history, window)
	seenSums := stats.SeenSums(recent)
	seenPairs := stats.SeenPairs(recent)

	res := Result{Picks: make([]model.Pick, 0, count)}
	for len(res.Picks) < count {
		pick := evaluate(g.draw(length), seenSums, seenPairs, positionFreq)
		res.Attempts++
		if pick.HotPair || pick.OverdueSum || pick.StrongPos {
			res.Picks = append(res.Picks, pick)
			continue
		}
		if opts.MaxAttempts > 0 && res.Attempts > opts.MaxAttempts {
			res.Exhausted = true
			pick.Fallback = true
			res.Picks = append(res.Picks, pick)
		}
	}
	return res
}

func (g *Generator) draw(length int) model.Combination {
	combo := make(model.Combination, length)
	for i := range combo {
		combo[i] = g.rnd.Intn(10)
	}
	return combo
}

func evaluate(combo model.Combination, seenSums map[int]struct{}, seenPairs map[string]struct{}, positionFreq []map[int]int) model.Pick {
	pick := model.Pick{Combo: combo}
	for _, pair := range combo.Pairs() {
		if _, ok := seenPairs[pair]; !ok {
			pick.HotPair = true
			break
		}
	}
	if _, ok := seenSums[combo.Sum()]; !ok {
		pick.OverdueSum = true
	}
	pick.StrongPos = strongPositions(combo, positionFreq)
	return pick
}

// strongPositions reports whether every digit was seen more than once at its
// position. Missing positions or digits fail.
func strongPositions(combo model.Combination, positionFreq []map[int]int) bool {
	if len(combo) == 0 || len(positionFreq) < len(combo) {
		return false
	}
	for i, d := range combo {
		count, ok := positionFreq[i][d]
		if !ok || count <= 1 {
			return false
		}
	}
	return true
}
