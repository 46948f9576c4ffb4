package engine

// Score counts the positions at which a and b hold the same symbol,
// comparing up to the length of the shorter sequence. Transpositions earn nothing.
func Score(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := len(ra)
	if len(rb) < n {
		n = len(rb)
	}
	score := 0
	for i := 0; i < n; i++ {
		if ra[i] == rb[i] {
			score++
		}
	}
	return score
}
