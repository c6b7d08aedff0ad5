package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"bget/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "acquire", "mux", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"acquire", "mux", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsFatalClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"inaccessible", services.Wrap(services.ErrInaccessible, "syncer", "checkout", "", nil), false},
		{"acquisition", fmt.Errorf("part 2: %w", services.ErrAcquisition), false},
		{"listing", services.Wrap(services.ErrListing, "bilibili", "favorites", "", nil), true},
		{"checkpoint", services.ErrCheckpoint, true},
		{"plain", errors.New("unexpected"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.IsFatal(tt.err); got != tt.want {
				t.Fatalf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCategory(t *testing.T) {
	if got := services.Category(services.Wrap(services.ErrConfiguration, "config", "load", "", nil)); got != "configuration" {
		t.Fatalf("unexpected category %q", got)
	}
	if got := services.Category(errors.New("x")); got != "unexpected" {
		t.Fatalf("unexpected category %q", got)
	}
	if got := services.Category(nil); got != "" {
		t.Fatalf("expected empty category for nil, got %q", got)
	}
}
