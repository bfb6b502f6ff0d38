package engine

// IsValidMatch reports whether cards form a legal match: exactly Options
// cards, and for every feature the values are either all equal or all
// distinct. Any malformed card (NoCard or out of range) fails the match.
func (r Rules) IsValidMatch(cards []Card) bool {
	if len(cards) != int(r.Options) {
		return false
	}
	for _, c := range cards {
		if !r.Valid(c) {
			return false
		}
	}
	counts := make([]uint8, r.Options)
	for f := uint8(0); f < r.Features; f++ {
		for i := range counts {
			counts[i] = 0
		}
		for _, c := range cards {
			counts[r.Feature(c, f)]++
		}
		// Legal feature distributions are one value Options times
		// (all equal) or every value once (all distinct).
		for _, n := range counts {
			if n != 0 && n != 1 && n != r.Options {
				return false
			}
		}
	}
	return true
}

// FindMatches enumerates legal matches among cards, stopping after limit
// matches (limit <= 0 means no limit). Used both for hints and for the
// game-over check (limit 1).
func (r Rules) FindMatches(cards []Card, limit int) [][]Card {
	var found [][]Card
	pick := make([]Card, 0, r.Options)

	var recurse func(start int) bool
	recurse = func(start int) bool {
		if len(pick) == int(r.Options) {
			if r.IsValidMatch(pick) {
				match := make([]Card, len(pick))
				copy(match, pick)
				found = append(found, match)
				return limit > 0 && len(found) >= limit
			}
			return false
		}
		for i := start; i < len(cards); i++ {
			pick = append(pick, cards[i])
			done := recurse(i + 1)
			pick = pick[:len(pick)-1]
			if done {
				return true
			}
		}
		return false
	}
	recurse(0)
	return found
}
