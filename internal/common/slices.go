package common

// Single returns the only element of s, or false when s does not hold
// exactly one.
func Single[S ~[]E, E any](s S) (E, bool) {
	if len(s) != 1 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// Last returns the last element of s, or false when s is empty.
func Last[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[len(s)-1], true
}
