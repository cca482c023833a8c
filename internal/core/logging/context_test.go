package logging

import (
	"context"
	"testing"
)

func TestWithOperation(t *testing.T) {
	ctx := WithOperation(context.Background(), "journal.sync")

	if got := GetOperation(ctx); got != "journal.sync" {
		t.Errorf("GetOperation() = %q, want %q", got, "journal.sync")
	}
}

func TestWithItemID(t *testing.T) {
	ctx := WithItemID(context.Background(), "task-0000aaaa")

	if got := GetItemID(ctx); got != "task-0000aaaa" {
		t.Errorf("GetItemID() = %q, want %q", got, "task-0000aaaa")
	}
}

func TestContextValues_NotPresent(t *testing.T) {
	ctx := context.Background()

	if got := GetOperation(ctx); got != "" {
		t.Errorf("GetOperation() = %q, want empty string", got)
	}
	if got := GetItemID(ctx); got != "" {
		t.Errorf("GetItemID() = %q, want empty string", got)
	}
}
