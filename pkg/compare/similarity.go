package compare

// Similarity returns 1 - d/max(len(a), len(b)) clamped to [0, 1], where d is
// the number of line insertions and deletions to turn a into b. Two empty
// plans are the same.
func Similarity(a, b []string) float64 {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1
	}
	d := EditDistance(a, b)
	if d >= maxLen {
		return 0
	}
	// integer numerator keeps exact ratios like 19/20 equal to their literal
	return float64(maxLen-d) / float64(maxLen)
}

// EditDistance returns the insert/delete edit distance of two line sequences,
// which is len(a) + len(b) - 2*LCS(a, b).
func EditDistance(a, b []string) int {
	return len(a) + len(b) - 2*lcsLength(a, b)
}

func lcsLength(a, b []string) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	// one row of the DP table, indexed by b
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
