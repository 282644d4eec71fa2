package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/vaultlint/internal/doctree"
)

var md = goldmark.New()

// PlainText strips inline Markdown from a content line: emphasis markers,
// code spans, link and image syntax and `![[...]]` embeds collapse to their
// text.
func PlainText(line string) string {
	src := []byte(embedPattern.ReplaceAllString(line, "$1"))
	doc := md.Parser().Parse(text.NewReader(src))
	return extractText(doc, src)
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := node.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.AutoLink:
			buf.Write(node.Label(src))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(buf.String()), " ")
}

// PlainDocument returns a copy of doc whose content lines are projected
// with PlainText. Properties and links are shared with doc.
func PlainDocument(doc *doctree.Document) *doctree.Document {
	out := *doc
	out.Sections = make([]*doctree.Section, len(doc.Sections))
	for i, sec := range doc.Sections {
		ps := &doctree.Section{Title: sec.Title, Buckets: make([]*doctree.Bucket, len(sec.Buckets))}
		for j, b := range sec.Buckets {
			pb := &doctree.Bucket{Title: b.Title, Implicit: b.Implicit, Entries: make([]doctree.Entry, 0, len(b.Entries))}
			for _, e := range b.Entries {
				switch e := e.(type) {
				case doctree.Line:
					pb.Entries = append(pb.Entries, doctree.Line(PlainText(string(e))))
				case *doctree.Subsection:
					lines := make([]string, len(e.Lines))
					for k, l := range e.Lines {
						lines[k] = PlainText(l)
					}
					pb.Entries = append(pb.Entries, &doctree.Subsection{Title: e.Title, Lines: lines})
				}
			}
			ps.Buckets[j] = pb
		}
		out.Sections[i] = ps
	}
	return &out
}
