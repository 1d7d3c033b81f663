package service

import (
	"strings"
	"testing"
)

func TestRenderer_Content(t *testing.T) {
	r := NewRenderer()

	out := r.Content("**bold** text")
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("expected markdown to render, got %q", out)
	}

	out = r.Content("hi <script>alert(1)</script>")
	if strings.Contains(out, "<script>") {
		t.Errorf("expected script to be stripped, got %q", out)
	}

	out = r.Content("[x](javascript:alert(1))")
	if strings.Contains(out, "javascript:") {
		t.Errorf("expected unsafe link to be dropped, got %q", out)
	}
}

func TestRenderer_Subject(t *testing.T) {
	r := NewRenderer()

	if got := r.Subject("<b>Hello</b>"); got != "Hello" {
		t.Errorf("expected tags stripped, got %q", got)
	}
}
