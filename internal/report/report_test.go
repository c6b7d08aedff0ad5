package report_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bget/internal/report"
	"bget/internal/video"
)

func sampleReport() *report.Report {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := report.New("run-1", "fav 99 [music]", "music", start)
	r.AddSkipped(video.Candidate{ID: 1, Title: "skipped one"})
	r.AddInaccessible(video.Candidate{ID: 2, Title: "gone"}, errors.New("video deleted"))
	multi := video.Item{
		AID:   3,
		Title: "three parts",
		Parts: []video.Part{
			{CID: 31, Index: 1, Title: "opening"},
			{CID: 32, Index: 2, Title: "middle"},
			{CID: 33, Index: 3, Title: "ending"},
		},
	}
	r.AddMultipart(multi)
	r.AddFailed(multi, 2, errors.New("stream 403"))
	r.AddAcquired()
	r.Finish(start.Add(90 * time.Second))
	return r
}

func TestRenderListsEveryBucket(t *testing.T) {
	r := sampleReport()
	out := report.Render(r)

	for _, want := range []string{
		"Acquired: 1  Skipped: 1  Inaccessible: 1  Failed: 1  Multipart: 1",
		"Duration: 1m30s",
		"https://b23.tv/av1",
		"skipped one",
		"https://b23.tv/av2",
		"video deleted",
		"P2",
		"stream 403",
		"P1 cid=31 opening",
		"P2 cid=32 middle",
		"P3 cid=33 ending",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDoesNotMutate(t *testing.T) {
	r := sampleReport()
	before := r.Summary()
	_ = report.Render(r)
	_ = report.Render(r)
	if r.Summary() != before {
		t.Fatalf("Render mutated the report: %+v -> %+v", before, r.Summary())
	}
}

func TestRenderEmptyReportOmitsSections(t *testing.T) {
	r := report.New("", "av7", "", time.Time{})
	out := report.Render(r)
	if strings.Contains(out, "Skipped:\n") || strings.Contains(out, "Multipart:\n") {
		t.Fatalf("empty report should not list sections:\n%s", out)
	}
	if !r.Clean() {
		t.Fatal("empty report should be clean")
	}
	if report.Render(nil) != "" {
		t.Fatal("nil report should render empty")
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	if err := report.WriteJSON(path, sampleReport()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		RunID        string         `json:"run_id"`
		Summary      report.Summary `json:"summary"`
		Inaccessible []struct {
			Error string `json:"error"`
		} `json:"inaccessible"`
		Failed []struct {
			Part  int    `json:"part"`
			Error string `json:"error"`
		} `json:"failed"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if decoded.RunID != "run-1" || decoded.Summary.Failed != 1 || decoded.Summary.Acquired != 1 {
		t.Fatalf("unexpected decoded report: %+v", decoded)
	}
	if decoded.Inaccessible[0].Error != "video deleted" || decoded.Failed[0].Part != 2 {
		t.Fatalf("errors not flattened: %+v", decoded)
	}
}

func TestTablePadsShortRows(t *testing.T) {
	out := report.Table([]string{"A", "B"}, [][]string{{"1"}, {"2", "3"}}, []report.Alignment{report.AlignRight})
	if !strings.Contains(out, "A") || !strings.Contains(out, "3") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if report.Table(nil, nil, nil) != "" {
		t.Fatal("table without headers should be empty")
	}
}
