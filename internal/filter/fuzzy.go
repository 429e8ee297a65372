package filter

// Ratio returns the normalized indel similarity of a and b on a 0-100
// scale: 200*LCS/(len(a)+len(b)), computed over runes. Two empty strings
// are identical.
func Ratio(a, b string) float64 {
	return ratio([]rune(a), []rune(b))
}

// PartialRatio returns the best Ratio between the shorter string and every
// window of the longer one with the shorter one's length. Windows that
// overhang either end of the longer string are included, so a needle that
// only partly overlaps the text still scores.
func PartialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}

	m, n := len(short), len(long)
	best := 0.0
	consider := func(window []rune) bool {
		if r := ratio(short, window); r > best {
			best = r
		}
		return best == 100
	}

	for i := 1; i < m; i++ {
		if consider(long[:i]) {
			return best
		}
	}
	for i := 0; i+m <= n; i++ {
		if consider(long[i : i+m]) {
			return best
		}
	}
	for i := max(n-m+1, 1); i < n; i++ {
		if consider(long[i:]) {
			return best
		}
	}
	return best
}

func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 200 * float64(lcs(a, b)) / float64(total)
}

// lcs returns the length of the longest common subsequence of a and b.
func lcs(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
