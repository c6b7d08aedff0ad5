package report

import (
	"time"

	"bget/internal/video"
)

// InaccessibleEntry is a candidate whose metadata could not be fetched.
type InaccessibleEntry struct {
	Candidate video.Candidate
	Err       error
}

// FailedEntry is an item whose acquisition errored. Part is the 1-based part
// that failed, or zero when item-level assets failed.
type FailedEntry struct {
	Item video.Item
	Part int
	Err  error
}

// Report is the outcome of one run.
type Report struct {
	RunID      string
	Resource   string
	Section    string
	StartedAt  time.Time
	FinishedAt time.Time

	Skipped      []video.Candidate
	Inaccessible []InaccessibleEntry
	Multipart    []video.Item
	Failed       []FailedEntry
	Acquired     int
}

// Summary holds the per-bucket counts.
type Summary struct {
	Skipped      int `json:"skipped"`
	Inaccessible int `json:"inaccessible"`
	Failed       int `json:"failed"`
	Multipart    int `json:"multipart"`
	Acquired     int `json:"acquired"`
}

// New starts a report for runID.
func New(runID, resource, section string, startedAt time.Time) *Report {
	return &Report{RunID: runID, Resource: resource, Section: section, StartedAt: startedAt}
}

func (r *Report) AddSkipped(c ...video.Candidate) {
	r.Skipped = append(r.Skipped, c...)
}

func (r *Report) AddInaccessible(c video.Candidate, err error) {
	r.Inaccessible = append(r.Inaccessible, InaccessibleEntry{Candidate: c, Err: err})
}

func (r *Report) AddMultipart(item video.Item) {
	r.Multipart = append(r.Multipart, item)
}

func (r *Report) AddFailed(item video.Item, part int, err error) {
	r.Failed = append(r.Failed, FailedEntry{Item: item, Part: part, Err: err})
}

func (r *Report) AddAcquired() {
	r.Acquired++
}

// Finish stamps the end time.
func (r *Report) Finish(at time.Time) {
	r.FinishedAt = at
}

// Summary returns the counts of every bucket.
func (r *Report) Summary() Summary {
	if r == nil {
		return Summary{}
	}
	return Summary{
		Skipped:      len(r.Skipped),
		Inaccessible: len(r.Inaccessible),
		Failed:       len(r.Failed),
		Multipart:    len(r.Multipart),
		Acquired:     r.Acquired,
	}
}

// Clean reports whether nothing was inaccessible or failed.
func (r *Report) Clean() bool {
	s := r.Summary()
	return s.Inaccessible == 0 && s.Failed == 0
}

// Duration is the wall time of the run, or zero while it is still running.
func (r *Report) Duration() time.Duration {
	if r == nil || r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
