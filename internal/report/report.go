// Package report runs the cross-document consistency rules over one race:
// header parity across its documents, city and capital coverage, and links
// from the race document to magic documents.
package report

import (
	"fmt"
	"io"
	"strings"
)

// Rule groups findings by the check that produced them.
type Rule string

const (
	RuleRace         Rule = "race"
	RuleHeaderParity Rule = "header-parity"
	RuleCities       Rule = "cities"
	RuleMagicLinks   Rule = "magic-links"
)

// Category classifies a finding.
type Category string

const (
	MissingHeader     Category = "missing-header"
	MissingCity       Category = "missing-city"
	MissingCapital    Category = "missing-capital"
	LowCityCount      Category = "low-city-count"
	MissingMagicLink  Category = "missing-magic-link"
	DirectoryNotFound Category = "directory-not-found"
	MissingDocument   Category = "missing-document"
	ParseError        Category = "parse-error"
)

// Finding is one reported inconsistency.
type Finding struct {
	Rule     Rule     `json:"rule"`
	Category Category `json:"category"`
	File     string   `json:"file,omitempty"`
	// Level is "h1" or "h2" for missing-header findings.
	Level   string   `json:"level,omitempty"`
	Missing []string `json:"missing,omitempty"`
	Count   int      `json:"count,omitempty"`
	Message string   `json:"message"`
}

// CityRecord is one location file of a race.
type CityRecord struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	IsCapital bool   `json:"is_capital"`
}

// Label is "Capital" or "City".
func (c CityRecord) Label() string {
	if c.IsCapital {
		return "Capital"
	}
	return "City"
}

// Report is the outcome of one ReportIssues run.
type Report struct {
	Race       string       `json:"race"`
	Findings   []Finding    `json:"findings"`
	Cities     []CityRecord `json:"cities"`
	MagicLinks []string     `json:"magic_links"`
}

// Count returns the number of findings in category c.
func (r *Report) Count(c Category) int {
	n := 0
	for _, f := range r.Findings {
		if f.Category == c {
			n++
		}
	}
	return n
}

// ByRule returns the findings produced by rule, in order.
func (r *Report) ByRule(rule Rule) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Rule == rule {
			out = append(out, f)
		}
	}
	return out
}

// WriteText prints the report in its plain-text layout.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Issues for race '%s':\n", r.Race)
	if len(r.Findings) == 0 {
		b.WriteString("  No issues found.\n")
	}
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "  %s\n", f.Message)
	}
	if len(r.MagicLinks) > 0 {
		fmt.Fprintf(&b, "Linked magic files found: %s\n", strings.Join(r.MagicLinks, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Report) add(f Finding) {
	r.Findings = append(r.Findings, f)
}
