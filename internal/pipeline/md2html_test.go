package pipeline

import (
	"context"
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	c := NewGoldmarkConverter()
	meta := DocumentMeta{Title: "My Book", Language: "fr"}

	got, err := c.ToHTML(context.Background(), "# Hello\n\nSome **bold** text.", meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []string{
		"<!DOCTYPE html>",
		`<html lang="fr">`,
		"<title>My Book</title>",
		`id="hello"`, // AutoHeadingID
		"<strong>bold</strong>",
	}
	for _, want := range checks {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestToHTML_GFMTables(t *testing.T) {
	c := NewGoldmarkConverter()

	got, err := c.ToHTML(context.Background(), "| a | b |\n|---|---|\n| 1 | 2 |", DocumentMeta{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "<table>") {
		t.Error("GFM table not rendered")
	}
}

func TestToHTML_CodeBlocksUseClasses(t *testing.T) {
	c := NewGoldmarkConverter()

	got, err := c.ToHTML(context.Background(), "```go\nfunc main() {}\n```", DocumentMeta{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, `class=`) {
		t.Error("highlighted code block carries no CSS classes")
	}
	if strings.Contains(got, "style=\"color") {
		t.Error("highlighted code block uses inline styles instead of classes")
	}
}

func TestToHTML_DefaultLanguage(t *testing.T) {
	c := NewGoldmarkConverter()

	got, err := c.ToHTML(context.Background(), "text", DocumentMeta{Title: "T"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, `<html lang="en">`) {
		t.Error("missing default language attribute")
	}
}

func TestToHTML_EscapesTitle(t *testing.T) {
	c := NewGoldmarkConverter()

	got, err := c.ToHTML(context.Background(), "text", DocumentMeta{Title: "<script>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "<title><script></title>") {
		t.Error("title not escaped")
	}
}

func TestToHTML_CancelledContext(t *testing.T) {
	c := NewGoldmarkConverter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.ToHTML(ctx, "# Hi", DocumentMeta{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}
