package reqctx

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestEnsureKeepsExistingID(t *testing.T) {
	ctx := WithRequestContext(context.Background())
	id := GetRequestContext(ctx).RequestID

	if got := GetRequestContext(Ensure(ctx)).RequestID; got != id {
		t.Errorf("Expected request ID %s to be kept, got %s", id, got)
	}
	if got := GetRequestContext(Ensure(context.Background())).RequestID; got == "unknown" || len(got) != 16 {
		t.Errorf("Expected a fresh 16-char request ID, got %q", got)
	}
}

func TestGetRequestContextWithoutID(t *testing.T) {
	if got := GetRequestContext(context.Background()).RequestID; got != "unknown" {
		t.Errorf("Expected 'unknown', got %q", got)
	}
}

func TestRequestError(t *testing.T) {
	ctx := WithRequestContext(context.Background())
	base := errors.New("boom")

	err := NewRequestError(ctx, base)
	if !errors.Is(err, base) {
		t.Error("Expected RequestError to unwrap to the base error")
	}
	if !strings.HasPrefix(err.Error(), "["+GetRequestContext(ctx).RequestID+"]") {
		t.Errorf("Expected request ID prefix, got %q", err.Error())
	}
	if NewRequestError(ctx, nil) != nil {
		t.Error("Expected nil for a nil error")
	}
}
