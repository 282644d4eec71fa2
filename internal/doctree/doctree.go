// Package doctree holds the parsed form of a vault document: front-matter
// properties, the three-level heading tree and the embedded-link index.
package doctree

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is one parsed Markdown file. Documents are built by the parser
// and not mutated afterwards.
type Document struct {
	FileName       string       `json:"file_name"`
	Path           string       `json:"path"`
	HasFrontMatter bool         `json:"has_front_matter"`
	Properties     *Mapping     `json:"properties"`
	Sections       []*Section   `json:"sections"`
	Links          []*LinkGroup `json:"links"`
}

// Section is a top-level (`# `) heading and its sub-heading buckets.
type Section struct {
	Title   string    `json:"title"`
	Buckets []*Bucket `json:"buckets"`
}

// Bucket collects the content of one sub-heading. Implicit buckets hold
// lines written directly under the top-level heading and carry its title.
type Bucket struct {
	Title    string  `json:"title"`
	Implicit bool    `json:"implicit,omitempty"`
	Entries  []Entry `json:"entries"`
}

// Entry is either a Line or a *Subsection.
type Entry interface {
	entry()
}

// Line is one non-blank content line, stored verbatim.
type Line string

// Subsection is a third-level (`### `) heading nested in a bucket.
type Subsection struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

func (Line) entry()        {}
func (*Subsection) entry() {}

// LinkGroup lists the embedded-link targets found under one top-level heading.
type LinkGroup struct {
	Heading string   `json:"heading"`
	Targets []string `json:"targets"`
}

// Property returns the front-matter value stored under key.
func (d *Document) Property(key string) (Value, bool) {
	return d.Properties.Get(key)
}

// H1Titles lists the top-level heading titles in document order.
func (d *Document) H1Titles() []string {
	out := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		out = append(out, s.Title)
	}
	return out
}

// Section returns the top-level section titled title, or nil.
func (d *Document) Section(title string) *Section {
	for _, s := range d.Sections {
		if s.Title == title {
			return s
		}
	}
	return nil
}

// H2Titles lists the sub-heading titles under the given top-level heading.
// Implicit buckets are not headings and are left out.
func (d *Document) H2Titles(h1 string) []string {
	s := d.Section(h1)
	if s == nil {
		return nil
	}
	var out []string
	for _, b := range s.Buckets {
		if !b.Implicit {
			out = append(out, b.Title)
		}
	}
	return out
}

// AllH2Titles lists every sub-heading title in the document, first
// occurrence order, without duplicates.
func (d *Document) AllH2Titles() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range d.Sections {
		for _, title := range d.H2Titles(s.Title) {
			if !seen[title] {
				seen[title] = true
				out = append(out, title)
			}
		}
	}
	return out
}

// Content returns the buckets of the given top-level heading.
func (d *Document) Content(h1 string) []*Bucket {
	if s := d.Section(h1); s != nil {
		return s.Buckets
	}
	return nil
}

// BucketContent returns the entries stored under (h1, h2). For lines written
// directly under h1, pass h1 as h2.
func (d *Document) BucketContent(h1, h2 string) []Entry {
	if s := d.Section(h1); s != nil {
		if b := s.Bucket(h2); b != nil {
			return b.Entries
		}
	}
	return nil
}

// LinkIndex returns the heading → targets index as a map.
func (d *Document) LinkIndex() map[string][]string {
	out := make(map[string][]string, len(d.Links))
	for _, g := range d.Links {
		out[g.Heading] = append([]string(nil), g.Targets...)
	}
	return out
}

// AllLinks flattens the link index in document order.
func (d *Document) AllLinks() []string {
	var out []string
	for _, g := range d.Links {
		out = append(out, g.Targets...)
	}
	return out
}

// Bucket returns the bucket titled title, or nil.
func (s *Section) Bucket(title string) *Bucket {
	for _, b := range s.Buckets {
		if b.Title == title {
			return b
		}
	}
	return nil
}

// Lines flattens a bucket's entries, subsection lines included.
func (b *Bucket) Lines() []string {
	var out []string
	for _, e := range b.Entries {
		switch e := e.(type) {
		case Line:
			out = append(out, string(e))
		case *Subsection:
			out = append(out, e.Lines...)
		}
	}
	return out
}

// Markdown serialises the document back to Markdown. Parsing the result
// yields the same properties, heading tree and links.
func (d *Document) Markdown() (string, error) {
	var buf bytes.Buffer
	if d.HasFrontMatter || d.Properties.Len() > 0 {
		buf.WriteString("---\n")
		if d.Properties.Len() > 0 {
			var fm bytes.Buffer
			enc := yaml.NewEncoder(&fm)
			enc.SetIndent(2)
			if err := enc.Encode(d.Properties); err != nil {
				return "", err
			}
			if err := enc.Close(); err != nil {
				return "", err
			}
			buf.Write(fm.Bytes())
		}
		buf.WriteString("---\n")
	}

	for _, s := range d.Sections {
		writeLine(&buf, "# "+s.Title)
		for _, b := range s.Buckets {
			if !b.Implicit {
				writeLine(&buf, "## "+b.Title)
			}
			for _, e := range b.Entries {
				switch e := e.(type) {
				case Line:
					writeLine(&buf, string(e))
				case *Subsection:
					writeLine(&buf, "### "+e.Title)
					for _, l := range e.Lines {
						writeLine(&buf, l)
					}
				}
			}
		}
	}
	return buf.String(), nil
}

func writeLine(buf *bytes.Buffer, line string) {
	buf.WriteString(strings.TrimRight(line, "\n"))
	buf.WriteByte('\n')
}
