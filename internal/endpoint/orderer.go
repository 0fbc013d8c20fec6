package endpoint

// Order labels two scored candidates. The lower score is the start and the
// higher score the end, where a stopping particle deposits the most charge.
// On equal scores first stays the start.
func Order(first, second Density) (start, end Density) {
	if second.Score < first.Score {
		return second, first
	}
	return first, second
}
