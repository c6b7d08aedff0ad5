package services_test

import (
	"context"
	"testing"

	"bget/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithItemID(ctx, 42)
	ctx = services.WithRunID(ctx, "run-123")

	if id, ok := services.ItemIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected item id: %v %v", id, ok)
	}
	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
}

func TestScopeStackDoesNotLeakIntoParent(t *testing.T) {
	root := services.WithScope(context.Background(), "download")
	child := services.WithScope(root, "av170001")
	sibling := services.WithScope(root, "av2")

	if got := services.ScopeFromContext(child); len(got) != 2 || got[0] != "download" || got[1] != "av170001" {
		t.Fatalf("unexpected child scope: %v", got)
	}
	if got := services.ScopeFromContext(sibling); len(got) != 2 || got[1] != "av2" {
		t.Fatalf("unexpected sibling scope: %v", got)
	}
	if got := services.ScopeFromContext(root); len(got) != 1 {
		t.Fatalf("expected parent scope untouched, got %v", got)
	}
}

func TestBlankScopePreservesContext(t *testing.T) {
	ctx := services.WithScope(context.Background(), "")
	if got := services.ScopeFromContext(ctx); len(got) != 0 {
		t.Fatalf("expected no scope, got %v", got)
	}
}
