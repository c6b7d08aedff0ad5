package logging

import "strings"

// ProgressSampler suppresses repetitive download progress logs while
// preserving signal when the stream changes or the completed share crosses a
// bucket boundary.
type ProgressSampler struct {
	bucketSize float64
	lastStream string
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 10%) or when the stream label changes.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event for stream should be logged.
// A total <= 0 means the size is unknown; only stream changes emit then.
func (s *ProgressSampler) ShouldLog(stream string, written, total int64) bool {
	if s == nil {
		return true
	}
	stream = strings.TrimSpace(stream)
	emit := false
	if stream != s.lastStream {
		s.lastStream = stream
		s.lastBucket = -1
		emit = true
	}
	if total > 0 {
		percent := Percent(written, total)
		bucket := int(percent / s.bucketSize)
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state (e.g. when a new part starts).
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastStream = ""
	s.lastBucket = -1
}

// Percent returns written/total as a 0-100 value clamped to that range.
func Percent(written, total int64) float64 {
	if total <= 0 || written <= 0 {
		return 0
	}
	if written >= total {
		return 100
	}
	return float64(written) * 100 / float64(total)
}
