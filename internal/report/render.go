package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"bget/internal/video"
)

// Render formats r for the operator. It does not modify r.
func Render(r *Report) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	s := r.Summary()

	b.WriteString("== Sync report ==\n")
	if r.Resource != "" {
		fmt.Fprintf(&b, "Resource: %s\n", r.Resource)
	}
	if r.RunID != "" {
		fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	}
	if d := r.Duration(); d > 0 {
		fmt.Fprintf(&b, "Duration: %s\n", d.Round(time.Second))
	}
	fmt.Fprintf(&b, "Acquired: %d  Skipped: %d  Inaccessible: %d  Failed: %d  Multipart: %d\n",
		s.Acquired, s.Skipped, s.Inaccessible, s.Failed, s.Multipart)

	if len(r.Skipped) > 0 {
		rows := make([][]string, 0, len(r.Skipped))
		for _, c := range r.Skipped {
			rows = append(rows, []string{video.ShortURL(c.ID), c.Title})
		}
		section(&b, "Skipped", Table([]string{"Link", "Title"}, rows, nil))
	}

	if len(r.Inaccessible) > 0 {
		rows := make([][]string, 0, len(r.Inaccessible))
		for _, e := range r.Inaccessible {
			rows = append(rows, []string{video.ShortURL(e.Candidate.ID), e.Candidate.Title, errText(e.Err)})
		}
		section(&b, "Inaccessible", Table([]string{"Link", "Title", "Error"}, rows, nil))
	}

	if len(r.Failed) > 0 {
		rows := make([][]string, 0, len(r.Failed))
		for _, e := range r.Failed {
			part := "-"
			if e.Part > 0 {
				part = "P" + strconv.Itoa(e.Part)
			}
			rows = append(rows, []string{video.ShortURL(e.Item.AID), part, e.Item.Title, errText(e.Err)})
		}
		section(&b, "Failed", Table([]string{"Link", "Part", "Title", "Error"}, rows, nil))
	}

	if len(r.Multipart) > 0 {
		rows := make([][]string, 0, len(r.Multipart))
		for _, item := range r.Multipart {
			rows = append(rows, []string{video.ShortURL(item.AID), item.Title, partLines(item)})
		}
		section(&b, "Multipart", Table([]string{"Link", "Title", "Parts"}, rows, nil))
	}

	return b.String()
}

// Write renders r to w.
func Write(w io.Writer, r *Report) error {
	_, err := io.WriteString(w, Render(r))
	return err
}

func section(b *strings.Builder, title, body string) {
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString(":\n")
	b.WriteString(body)
	b.WriteString("\n")
}

func partLines(item video.Item) string {
	lines := make([]string, 0, len(item.Parts))
	for i, p := range item.Parts {
		index := p.Index
		if index == 0 {
			index = i + 1
		}
		lines = append(lines, fmt.Sprintf("P%d cid=%d %s", index, p.CID, p.Title))
	}
	return strings.Join(lines, "\n")
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
