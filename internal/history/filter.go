// Package history parses uploaded draw histories.
package history

// MatchFunc returns true when a trimmed line is a valid draw.
type MatchFunc func(string) bool

// MatchLength returns a matcher accepting exactly length ASCII decimal digits.
func MatchLength(length int) MatchFunc {
	return func(line string) bool {
		if length <= 0 || len(line) != length {
			return false
		}
		for i := 0; i < len(line); i++ {
			ch := line[i]
			if ch < '0' || ch > '9' {
				return false
			}
		}
		return true
	}
}
