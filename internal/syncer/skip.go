package syncer

import "bget/internal/video"

// Skip splits candidates into the first k (skipped) and the rest. k is clamped
// to the list length; k <= 0 skips nothing.
func Skip(candidates []video.Candidate, k int) (remaining, skipped []video.Candidate) {
	if k <= 0 {
		return candidates, nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[k:], candidates[:k]
}
