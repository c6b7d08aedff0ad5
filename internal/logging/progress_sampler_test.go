package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 10},
		{"default bucket size for negative", -1, 10},
		{"custom bucket size", 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog("video", 1, 2) {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset() // should not panic
}

func TestProgressSampler_Buckets(t *testing.T) {
	s := NewProgressSampler(25)
	steps := []struct {
		written int64
		want    bool
	}{
		{0, true},    // new stream
		{10, false},  // 10%: still bucket 0
		{25, true},   // bucket 1
		{30, false},  // bucket 1
		{75, true},   // bucket 3
		{100, true},  // bucket 4
		{100, false}, // no change
	}
	for i, step := range steps {
		if got := s.ShouldLog("video", step.written, 100); got != step.want {
			t.Fatalf("step %d (%d/100): got %v want %v", i, step.written, got, step.want)
		}
	}
}

func TestProgressSampler_StreamChangeResetsBucket(t *testing.T) {
	s := NewProgressSampler(50)
	s.ShouldLog("video", 100, 100)
	if !s.ShouldLog("audio", 0, 100) {
		t.Fatal("expected stream change to emit")
	}
	if s.ShouldLog("audio", 10, 100) {
		t.Fatal("expected no emit inside the first bucket")
	}
}

func TestProgressSampler_UnknownTotal(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog("danmaku", 5, 0) {
		t.Fatal("expected first event to emit")
	}
	if s.ShouldLog("danmaku", 50, 0) {
		t.Fatal("expected unknown total to stay quiet")
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(50, 200); got != 25 {
		t.Fatalf("Percent = %v, want 25", got)
	}
	if got := Percent(300, 200); got != 100 {
		t.Fatalf("Percent clamps high, got %v", got)
	}
	if got := Percent(5, 0); got != 0 {
		t.Fatalf("Percent with unknown total = %v, want 0", got)
	}
}
