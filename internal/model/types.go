// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Default analyzer settings.
const (
	DefaultLength      = 4
	DefaultWindow      = 20
	DefaultPicks       = 10
	DefaultMaxAttempts = 100000

	MinLength = 3
	MaxLength = 5
)

// ErrInvalidLength is returned for combination lengths other than 3, 4 or 5.
var ErrInvalidLength = errors.New("length must be 3, 4, or 5")

// ValidateLength checks that n is a supported combination length.
func ValidateLength(n int) error {
	if n < MinLength || n > MaxLength {
		return fmt.Errorf("%w: got %d", ErrInvalidLength, n)
	}
	return nil
}

// Config defines analyzer and generator settings.
type Config struct {
	Length      int
	Window      int
	Picks       int
	MaxAttempts int
}

// Combination is one draw: an ordered sequence of digits in [0,9].
type Combination []int

// Sum returns the digit sum.
func (c Combination) Sum() int {
	total := 0
	for _, d := range c {
		total += d
	}
	return total
}

// Pairs returns the key of every index pair i<j, formed as digit(i) followed
// by digit(j). Digits are not sorted.
func (c Combination) Pairs() []string {
	if len(c) < 2 {
		return nil
	}
	pairs := make([]string, 0, len(c)*(len(c)-1)/2)
	for i := 0; i < len(c); i++ {
		for j := i + 1; j < len(c); j++ {
			pairs = append(pairs, strconv.Itoa(c[i])+strconv.Itoa(c[j]))
		}
	}
	return pairs
}

// String renders the digits concatenated, e.g. "1234".
func (c Combination) String() string {
	var b strings.Builder
	b.Grow(len(c))
	for _, d := range c {
		b.WriteString(strconv.Itoa(d))
	}
	return b.String()
}

// Analysis holds the frequency tables and overdue sets for a history.
type Analysis struct {
	Length       int            `json:"length" yaml:"length"`
	Draws        int            `json:"draws" yaml:"draws"`
	Window       int            `json:"window" yaml:"window"`
	SumFreq      map[int]int    `json:"sum_freq" yaml:"sum_freq"`
	PairFreq     map[string]int `json:"pair_freq" yaml:"pair_freq"`
	PositionFreq []map[int]int  `json:"position_freq" yaml:"position_freq"`
	OverdueSums  []int          `json:"overdue_sums" yaml:"overdue_sums"`
	OverduePairs []string       `json:"overdue_pairs" yaml:"overdue_pairs"`
}

// Pick is a generated candidate and the predicates it satisfied.
type Pick struct {
	Combo      Combination
	HotPair    bool
	OverdueSum bool
	StrongPos  bool
	// Fallback is set when the pick was accepted without satisfying any
	// predicate because the attempt cap ran out.
	Fallback   bool
}

// Snapshot is the persisted session state.
type Snapshot struct {
	Length int
	Draws  []Combination
}

// Validate checks the length and that every draw has exactly Length digits
// in [0,9].
func (s Snapshot) Validate() error {
	if err := ValidateLength(s.Length); err != nil {
		return err
	}
	for i, combo := range s.Draws {
		if len(combo) != s.Length {
			return fmt.Errorf("draw %d has %d digits, want %d", i, len(combo), s.Length)
		}
		for _, d := range combo {
			if d < 0 || d > 9 {
				return fmt.Errorf("draw %d has digit %d out of range", i, d)
			}
		}
	}
	return nil
}

// PickBatch is a stored set of generated picks.
type PickBatch struct {
	ID        int64
	CreatedAt time.Time
	Length    int
	Picks     []Pick
}
