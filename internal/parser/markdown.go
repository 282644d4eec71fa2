package parser

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/vaultlint/internal/doctree"
)

// embedPattern matches `![[target]]`; targets cannot contain brackets.
var embedPattern = regexp.MustCompile(`!\[\[([^\[\]]*)\]\]`)

// MarkdownParser handles vault Markdown files: YAML front matter, a
// three-level heading tree and `![[...]]` embeds.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	props, body, found, err := splitFrontMatter(src)
	if err != nil {
		return nil, err
	}

	doc := &doctree.Document{
		FileName:       filename,
		HasFrontMatter: found,
		Properties:     props,
	}

	b := &treeBuilder{doc: doc}
	scanner := bufio.NewScanner(bytes.NewReader(body))
	// A line may be as long as the whole body.
	scanner.Buffer(make([]byte, 0, 64*1024), len(body)+1)
	for scanner.Scan() {
		b.line(strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return doc, nil
}

// headingLevel returns 1-3 for `# `, `## ` and `### ` lines and 0 otherwise.
// Deeper markers are content.
func headingLevel(line string) int {
	switch {
	case strings.HasPrefix(line, "# "):
		return 1
	case strings.HasPrefix(line, "## "):
		return 2
	case strings.HasPrefix(line, "### "):
		return 3
	default:
		return 0
	}
}

func headingTitle(line string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
}

// treeBuilder walks body lines keeping the innermost open heading scopes.
type treeBuilder struct {
	doc *doctree.Document
	h1  *doctree.Section
	h2  *doctree.Bucket
	h3  *doctree.Subsection
}

func (b *treeBuilder) line(line string) {
	switch headingLevel(line) {
	case 1:
		b.openSection(headingTitle(line))
	case 2:
		b.openBucket(headingTitle(line))
	case 3:
		b.openSubsection(headingTitle(line))
	default:
		if strings.TrimSpace(line) == "" {
			return
		}
		b.content(line)
	}
}

func (b *treeBuilder) openSection(title string) {
	b.h2, b.h3 = nil, nil
	if s := b.doc.Section(title); s != nil {
		// A repeated title starts over in place.
		s.Buckets = nil
		b.h1 = s
		return
	}
	b.h1 = &doctree.Section{Title: title}
	b.doc.Sections = append(b.doc.Sections, b.h1)
}

func (b *treeBuilder) openBucket(title string) {
	b.h3 = nil
	if b.h1 == nil {
		b.h2 = nil
		return
	}
	b.h2 = b.bucket(title, false)
	b.h2.Entries = nil
}

func (b *treeBuilder) openSubsection(title string) {
	if b.h1 == nil {
		return
	}
	if b.h2 == nil {
		// No sub-heading yet: the h3 acts as one.
		b.h2 = b.bucket(title, false)
		b.h2.Entries = nil
		b.h3 = nil
		return
	}
	b.h3 = &doctree.Subsection{Title: title}
	b.h2.Entries = append(b.h2.Entries, b.h3)
}

func (b *treeBuilder) content(line string) {
	if b.h1 == nil {
		return
	}

	for _, m := range embedPattern.FindAllStringSubmatch(line, -1) {
		b.addLink(m[1])
	}

	switch {
	case b.h3 != nil:
		b.h3.Lines = append(b.h3.Lines, line)
	case b.h2 != nil:
		b.h2.Entries = append(b.h2.Entries, doctree.Line(line))
	default:
		own := b.bucket(b.h1.Title, true)
		own.Entries = append(own.Entries, doctree.Line(line))
	}
}

// bucket finds or creates the bucket titled title in the open section.
func (b *treeBuilder) bucket(title string, implicit bool) *doctree.Bucket {
	if existing := b.h1.Bucket(title); existing != nil {
		if !implicit {
			existing.Implicit = false
		}
		return existing
	}
	nb := &doctree.Bucket{Title: title, Implicit: implicit}
	b.h1.Buckets = append(b.h1.Buckets, nb)
	return nb
}

func (b *treeBuilder) addLink(target string) {
	for _, g := range b.doc.Links {
		if g.Heading == b.h1.Title {
			g.Targets = append(g.Targets, target)
			return
		}
	}
	b.doc.Links = append(b.doc.Links, &doctree.LinkGroup{
		Heading: b.h1.Title,
		Targets: []string{target},
	})
}
