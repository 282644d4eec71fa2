package parser

import (
	"strings"
	"testing"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"plain words", "plain words"},
		{"**bold** and _em_", "bold and em"},
		{"`code` here", "code here"},
		{"see [the map](maps/world.png)", "see the map"},
		{"![[Fireball]] spell", "Fireball spell"},
		{"- list item", "list item"},
		{"> quoted lore", "quoted lore"},
		{"visit <https://example.org>", "visit https://example.org"},
	}
	for _, tt := range tests {
		if got := PlainText(tt.line); got != tt.want {
			t.Errorf("PlainText(%q): expected %q, got %q", tt.line, tt.want, got)
		}
	}
}

func TestPlainDocument(t *testing.T) {
	doc, err := (&MarkdownParser{}).Parse(strings.NewReader("# A\n**bold** ![[Feu]]\n## B\n### C\n`x`\n"), "a.md")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	plain := PlainDocument(doc)

	if got := plain.Section("A").Bucket("A").Lines(); len(got) != 1 || got[0] != "bold Feu" {
		t.Fatalf("implicit bucket: got %q", got)
	}
	if got := plain.Section("A").Bucket("B").Lines(); len(got) != 1 || got[0] != "x" {
		t.Fatalf("subsection lines: got %q", got)
	}
	if orig := doc.Section("A").Bucket("A").Lines(); orig[0] != "**bold** ![[Feu]]" {
		t.Fatalf("input document changed: %q", orig)
	}
	if len(plain.AllLinks()) != 1 {
		t.Fatalf("links should be kept, got %v", plain.AllLinks())
	}
}
