package vault

import (
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Race is a resolved race entry of `00 - Races`.
type Race struct {
	// Name is the race name as used in folder and file names.
	Name string
	// Document is the race's own Markdown file.
	Document string
}

// ResolveRace finds the race matching query, case-insensitively. A folder
// whose cleaned name equals query wins, then a `.md` file with that exact
// name, then the first `.md` file whose name contains query.
func (v *Vault) ResolveRace(query string) (Race, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	entries, err := fs.ReadDir(v.fsys, RacesDir)
	if err != nil || q == "" {
		return Race{}, &NotFoundError{What: "race", Path: query}
	}

	for _, e := range entries {
		if !e.IsDir() || strings.ToLower(CleanName(e.Name())) != q {
			continue
		}
		doc := path.Join(RacesDir, e.Name(), e.Name()+".md")
		if _, err := v.file("race file", doc); err != nil {
			return Race{}, err
		}
		return Race{Name: e.Name(), Document: doc}, nil
	}

	var partial *Race
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".md")
		cleaned := strings.ToLower(CleanName(name))
		race := Race{Name: name, Document: path.Join(RacesDir, e.Name())}
		if cleaned == q {
			return race, nil
		}
		if partial == nil && strings.Contains(cleaned, q) {
			partial = &race
		}
	}
	if partial != nil {
		return *partial, nil
	}
	return Race{}, &NotFoundError{What: "race", Path: query}
}

// Races lists race names found in `00 - Races`, folders and files alike,
// sorted and without duplicates.
func (v *Vault) Races() ([]string, error) {
	entries, err := fs.ReadDir(v.fsys, RacesDir)
	if err != nil {
		return nil, &NotFoundError{What: "race directory", Path: RacesDir}
	}
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !e.IsDir() {
			if !strings.HasSuffix(name, ".md") {
				continue
			}
			name = strings.TrimSuffix(name, ".md")
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// LookupRace maps user input to a race name: an exact entry of Races is
// used as is, anything else goes through ResolveRace.
func (v *Vault) LookupRace(query string) (string, error) {
	races, err := v.Races()
	if err != nil {
		return "", err
	}
	for _, r := range races {
		if r == query {
			return r, nil
		}
	}
	race, err := v.ResolveRace(query)
	if err != nil {
		return "", err
	}
	return race.Name, nil
}
