package report

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/dgallion1/vaultlint/internal/doctree"
	"github.com/dgallion1/vaultlint/internal/parser"
	"github.com/dgallion1/vaultlint/internal/vault"
)

const (
	// MinCities is the number of location files below which a race is
	// flagged with low-city-count.
	MinCities = 5
	// CapitalTag marks a location file as the race's capital.
	CapitalTag = "capitale"
)

// Navigator resolves the vault paths the rules read. *vault.Vault
// implements it.
type Navigator interface {
	FS() fs.FS
	RaceDocumentPaths(race string) ([]string, error)
	RaceRootDocument(race string) (string, error)
	LocationFolder(race string) (string, error)
	MagicFolder() (string, error)
	MarkdownFiles(dir string) ([]string, error)
}

var _ Navigator = (*vault.Vault)(nil)

// Engine runs the consistency rules. It holds no state between runs.
type Engine struct {
	nav Navigator
	log *slog.Logger
}

func New(nav Navigator, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{nav: nav, log: log}
}

// ReportIssues runs every rule for race. Data problems are returned as
// findings, never as errors. A missing race folder stops the run.
func (e *Engine) ReportIssues(race string) *Report {
	rep := &Report{Race: race, Findings: []Finding{}, Cities: []CityRecord{}, MagicLinks: []string{}}

	paths, err := e.nav.RaceDocumentPaths(race)
	if err != nil {
		dir := notFoundPath(err, path.Join(vault.RacesDir, race))
		rep.add(Finding{
			Rule:     RuleRace,
			Category: DirectoryNotFound,
			File:     dir,
			Message:  fmt.Sprintf("Race directory '%s' does not exist.", dir),
		})
		e.log.Debug("race directory missing", "race", race, "error", err)
		return rep
	}

	e.checkHeaders(rep, paths)
	e.checkCities(rep, race)
	e.checkMagicLinks(rep, race)

	e.log.Debug("report complete", "race", race, "documents", len(paths), "findings", len(rep.Findings))
	return rep
}

type headerSet struct {
	path string
	h1   map[string]bool
	h2   map[string]bool
}

// checkHeaders builds the h1 and h2 unions over every parsed document,
// then flags each document lacking part of them.
func (e *Engine) checkHeaders(rep *Report, paths []string) {
	allH1 := make(map[string]bool)
	allH2 := make(map[string]bool)
	docs := make([]headerSet, 0, len(paths))

	for _, p := range paths {
		doc, err := parser.ParseFile(e.nav.FS(), p)
		if err != nil {
			rep.add(parseFinding(RuleHeaderParity, p, err))
			e.log.Warn("skipping unparsable document", "path", p, "error", err)
			continue
		}
		hs := headerSet{path: p, h1: toSet(doc.H1Titles()), h2: toSet(doc.AllH2Titles())}
		for t := range hs.h1 {
			allH1[t] = true
		}
		for t := range hs.h2 {
			allH2[t] = true
		}
		docs = append(docs, hs)
	}

	for _, d := range docs {
		e.addMissing(rep, d.path, "h1", allH1, d.h1)
		e.addMissing(rep, d.path, "h2", allH2, d.h2)
	}
}

func (e *Engine) addMissing(rep *Report, file, level string, all, have map[string]bool) {
	missing := difference(all, have)
	if len(missing) == 0 {
		return
	}
	rep.add(Finding{
		Rule:     RuleHeaderParity,
		Category: MissingHeader,
		File:     file,
		Level:    level,
		Missing:  missing,
		Message:  fmt.Sprintf("Missing %s in file '%s': %s", level, path.Base(file), strings.Join(missing, ", ")),
	})
}

func (e *Engine) checkCities(rep *Report, race string) {
	cities, findings, err := e.cities(race)
	if err != nil {
		rep.add(Finding{
			Rule:     RuleCities,
			Category: DirectoryNotFound,
			File:     notFoundPath(err, path.Join(vault.LocationsDir, race)),
			Message:  fmt.Sprintf("No city directory found for race '%s' in '%s'.", race, vault.LocationsDir),
		})
		return
	}
	for _, f := range findings {
		rep.add(f)
	}
	rep.Cities = cities

	hasCapital := false
	for _, c := range cities {
		if c.IsCapital {
			hasCapital = true
			break
		}
	}

	if len(cities) == 0 {
		rep.add(Finding{
			Rule:     RuleCities,
			Category: MissingCity,
			Message:  fmt.Sprintf("No cities found for race '%s' in '%s'.", race, vault.LocationsDir),
		})
	}
	if !hasCapital {
		rep.add(Finding{
			Rule:     RuleCities,
			Category: MissingCapital,
			Message:  fmt.Sprintf("No capital city found for race '%s' in '%s'.", race, vault.LocationsDir),
		})
	}
	if len(cities) < MinCities {
		rep.add(Finding{
			Rule:     RuleCities,
			Category: LowCityCount,
			Count:    len(cities),
			Message:  fmt.Sprintf("Fewer than %d cities found for race '%s'. Current count: %d", MinCities, race, len(cities)),
		})
	}
}

// Cities lists the location files of race with their capital flag. A file
// that fails to parse is listed as a plain city.
func (e *Engine) Cities(race string) ([]CityRecord, error) {
	cities, findings, err := e.cities(race)
	if err != nil {
		return nil, err
	}
	for _, f := range findings {
		e.log.Warn("city document unreadable", "path", f.File, "message", f.Message)
	}
	return cities, nil
}

func (e *Engine) cities(race string) ([]CityRecord, []Finding, error) {
	dir, err := e.nav.LocationFolder(race)
	if err != nil {
		return nil, nil, err
	}
	files, err := e.nav.MarkdownFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	cities := make([]CityRecord, 0, len(files))
	var findings []Finding
	for _, p := range files {
		city := CityRecord{Name: strings.TrimSuffix(path.Base(p), ".md"), Path: p}
		doc, err := parser.ParseFile(e.nav.FS(), p)
		if err != nil {
			findings = append(findings, parseFinding(RuleCities, p, err))
		} else {
			city.IsCapital = isCapital(doc)
		}
		cities = append(cities, city)
	}
	return cities, findings, nil
}

func isCapital(doc *doctree.Document) bool {
	tags, ok := doc.Property("tags")
	return ok && tags.Contains(CapitalTag)
}

// checkMagicLinks intersects the race document's link targets with the
// names of the magic documents.
func (e *Engine) checkMagicLinks(rep *Report, race string) {
	rootPath, err := e.nav.RaceRootDocument(race)
	if err != nil {
		p := notFoundPath(err, path.Join(vault.RacesDir, race, race+".md"))
		rep.add(Finding{
			Rule:     RuleMagicLinks,
			Category: MissingDocument,
			File:     p,
			Message:  fmt.Sprintf("Race file '%s' not found.", p),
		})
		return
	}
	doc, err := parser.ParseFile(e.nav.FS(), rootPath)
	if err != nil {
		rep.add(parseFinding(RuleMagicLinks, rootPath, err))
		return
	}

	magicDir, err := e.nav.MagicFolder()
	if err != nil {
		p := notFoundPath(err, vault.MagicDir)
		rep.add(Finding{
			Rule:     RuleMagicLinks,
			Category: DirectoryNotFound,
			File:     p,
			Message:  fmt.Sprintf("Magic directory '%s' does not exist.", p),
		})
		return
	}
	e.log.Debug("checking magic directory", "dir", magicDir)

	files, err := e.nav.MarkdownFiles(magicDir)
	if err != nil {
		e.log.Warn("listing magic directory", "dir", magicDir, "error", err)
	}
	magic := make(map[string]string, len(files))
	names := make([]string, 0, len(files))
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".md")
		magic[strings.ToLower(name)] = name
		names = append(names, strings.ToLower(name))
	}
	e.log.Debug("magic files found", "files", names)

	seen := make(map[string]bool)
	for _, link := range doc.AllLinks() {
		norm := strings.ToLower(strings.TrimSpace(link))
		name, ok := magic[norm]
		e.log.Debug("checking link", "link", norm, "match", ok)
		if !ok || seen[norm] {
			continue
		}
		seen[norm] = true
		rep.MagicLinks = append(rep.MagicLinks, name)
	}

	if len(rep.MagicLinks) == 0 {
		rep.add(Finding{
			Rule:     RuleMagicLinks,
			Category: MissingMagicLink,
			File:     rootPath,
			Message:  fmt.Sprintf("No links to magic files found in '%s.md'.", race),
		})
	}
}

func parseFinding(rule Rule, file string, err error) Finding {
	return Finding{
		Rule:     rule,
		Category: ParseError,
		File:     file,
		Message:  fmt.Sprintf("Could not parse document: %v", err),
	}
}

func notFoundPath(err error, fallback string) string {
	var nf *vault.NotFoundError
	if errors.As(err, &nf) && nf.Path != "" {
		return nf.Path
	}
	return fallback
}

func toSet(items []string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, it := range items {
		s[it] = true
	}
	return s
}

// difference returns the sorted members of all absent from have.
func difference(all, have map[string]bool) []string {
	var out []string
	for t := range all {
		if !have[t] {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
