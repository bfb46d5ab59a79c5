package sources

import (
	"context"
	"testing"
)

func TestTextHandler_RoundTrip(t *testing.T) {
	h := &TextHandler{}

	a, err := h.Parse(context.Background(), "text:hello world", Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if a.InlineContent != "hello world" {
		t.Errorf("InlineContent = %q, want %q", a.InlineContent, "hello world")
	}

	content, err := h.Load(context.Background(), a)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if content != "hello world" {
		t.Errorf("Load() = %q, want %q", content, "hello world")
	}
}

func TestTextHandler_CanHandle(t *testing.T) {
	h := &TextHandler{}
	if !h.CanHandle("text:anything") {
		t.Error("expected text: to be handled")
	}
	if h.CanHandle("file:foo") {
		t.Error("did not expect file: to be handled")
	}
}
