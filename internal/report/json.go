package report

import (
	"encoding/json"
	"fmt"
	"time"

	"bget/internal/fileutil"
	"bget/internal/video"
)

type jsonInaccessible struct {
	Candidate video.Candidate `json:"candidate"`
	Error     string          `json:"error"`
}

type jsonFailed struct {
	Item  video.Item `json:"item"`
	Part  int        `json:"part,omitempty"`
	Error string     `json:"error"`
}

type jsonReport struct {
	RunID        string             `json:"run_id,omitempty"`
	Resource     string             `json:"resource,omitempty"`
	Section      string             `json:"section,omitempty"`
	StartedAt    time.Time          `json:"started_at,omitzero"`
	FinishedAt   time.Time          `json:"finished_at,omitzero"`
	Summary      Summary            `json:"summary"`
	Skipped      []video.Candidate  `json:"skipped"`
	Inaccessible []jsonInaccessible `json:"inaccessible"`
	Failed       []jsonFailed       `json:"failed"`
	Multipart    []video.Item       `json:"multipart"`
}

// MarshalJSON flattens errors to strings and always emits every bucket.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := jsonReport{
		RunID:        r.RunID,
		Resource:     r.Resource,
		Section:      r.Section,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		Summary:      r.Summary(),
		Skipped:      append([]video.Candidate{}, r.Skipped...),
		Inaccessible: make([]jsonInaccessible, 0, len(r.Inaccessible)),
		Failed:       make([]jsonFailed, 0, len(r.Failed)),
		Multipart:    append([]video.Item{}, r.Multipart...),
	}
	for _, e := range r.Inaccessible {
		out.Inaccessible = append(out.Inaccessible, jsonInaccessible{Candidate: e.Candidate, Error: errText(e.Err)})
	}
	for _, e := range r.Failed {
		out.Failed = append(out.Failed, jsonFailed{Item: e.Item, Part: e.Part, Error: errText(e.Err)})
	}
	return json.Marshal(out)
}

// WriteJSON exports r to path atomically.
func WriteJSON(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
