package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/vaultlint/internal/vault"
)

func newEngine(files map[string]string) *Engine {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return New(vault.New(fsys), nil)
}

// healthyRace is a race with no findings at all; tests start from it and
// break one thing.
func healthyRace() map[string]string {
	files := map[string]string{
		"00 - Races/Elfes/Elfes.md":    "# Culture\n## Rites\n![[Feu]]\n# Magie\n## Écoles\n",
		"00 - Races/Elfes/Histoire.md": "# Culture\n## Rites\n# Magie\n## Écoles\n",
		"01 - Magies/Feu.md":           "# Feu\n",
		"01 - Magies/Glace.md":         "# Glace\n",
		"02 - Lieux/Elfes/Sylvanor.md": "---\ntags: [ville, capitale]\n---\n# Sylvanor\n",
	}
	for i := 1; i < MinCities; i++ {
		files[fmt.Sprintf("02 - Lieux/Elfes/Ville%d.md", i)] = "---\ntags: [ville]\n---\n"
	}
	return files
}

func TestReportIssues_HealthyRace(t *testing.T) {
	rep := newEngine(healthyRace()).ReportIssues("Elfes")

	assert.Empty(t, rep.Findings)
	assert.Equal(t, []string{"Feu"}, rep.MagicLinks)
	require.Len(t, rep.Cities, MinCities)
	assert.Equal(t, CityRecord{Name: "Sylvanor", Path: "02 - Lieux/Elfes/Sylvanor.md", IsCapital: true}, rep.Cities[0])
}

func TestHeaderParity_UniqueHeadingFlagsOthers(t *testing.T) {
	files := healthyRace()
	files["00 - Races/Elfes/Elfes.md"] = "# Magie\n![[Feu]]\n"
	files["00 - Races/Elfes/Histoire.md"] = "# Magie\n"
	files["00 - Races/Elfes/Culture/Rites.md"] = "# Culture\n# Magie\n"

	rep := newEngine(files).ReportIssues("Elfes")
	findings := rep.ByRule(RuleHeaderParity)

	require.Len(t, findings, 2)
	flagged := map[string][]string{}
	for _, f := range findings {
		assert.Equal(t, MissingHeader, f.Category)
		assert.Equal(t, "h1", f.Level)
		flagged[f.File] = f.Missing
	}
	assert.Equal(t, map[string][]string{
		"00 - Races/Elfes/Elfes.md":    {"Culture"},
		"00 - Races/Elfes/Histoire.md": {"Culture"},
	}, flagged)
	assert.NotContains(t, flagged, "00 - Races/Elfes/Culture/Rites.md")
}

func TestHeaderParity_H2UnionAcrossSections(t *testing.T) {
	files := healthyRace()
	files["00 - Races/Elfes/Elfes.md"] = "# Culture\n## Rites\n## Fêtes\n![[Feu]]\n# Magie\n## Écoles\n"

	rep := newEngine(files).ReportIssues("Elfes")
	findings := rep.ByRule(RuleHeaderParity)

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, "00 - Races/Elfes/Histoire.md", f.File)
	assert.Equal(t, "h2", f.Level)
	assert.Equal(t, []string{"Fêtes"}, f.Missing)
	assert.Equal(t, "Missing h2 in file 'Histoire.md': Fêtes", f.Message)
}

func TestHeaderParity_MissingTitlesSorted(t *testing.T) {
	files := healthyRace()
	files["00 - Races/Elfes/Histoire.md"] = "# Culture\n## Rites\n"
	files["00 - Races/Elfes/Elfes.md"] = "# Culture\n## Rites\n# Zèle\n# Magie\n## Écoles\n![[Feu]]\n"

	rep := newEngine(files).ReportIssues("Elfes")
	findings := rep.ByRule(RuleHeaderParity)

	require.Len(t, findings, 2)
	assert.Equal(t, []string{"Magie", "Zèle"}, findings[0].Missing)
	assert.Equal(t, []string{"Écoles"}, findings[1].Missing)
}

func TestHeaderParity_ParseErrorExcluded(t *testing.T) {
	files := healthyRace()
	files["00 - Races/Elfes/Broken.md"] = "---\ntags: [unclosed\n---\n# Secret\n"

	rep := newEngine(files).ReportIssues("Elfes")
	findings := rep.ByRule(RuleHeaderParity)

	require.Len(t, findings, 1)
	assert.Equal(t, ParseError, findings[0].Category)
	assert.Equal(t, "00 - Races/Elfes/Broken.md", findings[0].File)
	assert.Zero(t, rep.Count(MissingHeader), "the broken file's headings must not join the union")
}

func TestHeaderParity_LongLineDocumentChecked(t *testing.T) {
	files := healthyRace()
	files["00 - Races/Elfes/Annexe.md"] = "# Culture\n## Rites\n" + strings.Repeat("x", 1<<20+1) +
		"\n# Magie\n## Écoles\n# Annexe\n"

	rep := newEngine(files).ReportIssues("Elfes")

	assert.Zero(t, rep.Count(ParseError))
	findings := rep.ByRule(RuleHeaderParity)
	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.Equal(t, MissingHeader, f.Category)
		assert.Equal(t, []string{"Annexe"}, f.Missing)
		assert.NotEqual(t, "00 - Races/Elfes/Annexe.md", f.File)
	}
}

func TestCities_SixWithCapital(t *testing.T) {
	files := healthyRace()
	files["02 - Lieux/Elfes/Ville9.md"] = "# Ville9\n"

	rep := newEngine(files).ReportIssues("Elfes")

	assert.Empty(t, rep.ByRule(RuleCities))
	assert.Len(t, rep.Cities, 6)
}

func TestCities_ThreeWithoutCapital(t *testing.T) {
	files := healthyRace()
	delete(files, "02 - Lieux/Elfes/Sylvanor.md")
	delete(files, "02 - Lieux/Elfes/Ville4.md")

	rep := newEngine(files).ReportIssues("Elfes")
	findings := rep.ByRule(RuleCities)

	require.Len(t, findings, 2)
	assert.Equal(t, MissingCapital, findings[0].Category)
	assert.Equal(t, LowCityCount, findings[1].Category)
	assert.Equal(t, 3, findings[1].Count)
	assert.Equal(t, "Fewer than 5 cities found for race 'Elfes'. Current count: 3", findings[1].Message)
	assert.Zero(t, rep.Count(MissingCity))
}

func TestCities_EmptyFolder(t *testing.T) {
	files := healthyRace()
	for name := range files {
		if strings.HasPrefix(name, vault.LocationsDir+"/") {
			delete(files, name)
		}
	}
	files["02 - Lieux/Elfes/notes.txt"] = "not a city"

	rep := newEngine(files).ReportIssues("Elfes")
	findings := rep.ByRule(RuleCities)

	require.Len(t, findings, 3)
	assert.Equal(t, MissingCity, findings[0].Category)
	assert.Equal(t, MissingCapital, findings[1].Category)
	assert.Equal(t, LowCityCount, findings[2].Category)
	assert.Equal(t, 0, findings[2].Count)
}

func TestCities_MissingFolderStopsRule(t *testing.T) {
	files := healthyRace()
	for i := 1; i < MinCities; i++ {
		delete(files, fmt.Sprintf("02 - Lieux/Elfes/Ville%d.md", i))
	}
	delete(files, "02 - Lieux/Elfes/Sylvanor.md")

	rep := newEngine(files).ReportIssues("Elfes")
	findings := rep.ByRule(RuleCities)

	require.Len(t, findings, 1)
	assert.Equal(t, DirectoryNotFound, findings[0].Category)
	assert.Equal(t, "No city directory found for race 'Elfes' in '02 - Lieux'.", findings[0].Message)
	assert.Empty(t, rep.Cities)
}

func TestCities_UnparsableCountsAsCity(t *testing.T) {
	files := healthyRace()
	files["02 - Lieux/Elfes/Sylvanor.md"] = "---\ntags: [capitale\n---\n"

	rep := newEngine(files).ReportIssues("Elfes")
	findings := rep.ByRule(RuleCities)

	require.Len(t, findings, 2)
	assert.Equal(t, ParseError, findings[0].Category)
	assert.Equal(t, MissingCapital, findings[1].Category)
	assert.Len(t, rep.Cities, MinCities)
}

func TestCities_SingleTagString(t *testing.T) {
	files := healthyRace()
	files["02 - Lieux/Elfes/Sylvanor.md"] = "---\ntags: capitale\n---\n"

	rep := newEngine(files).ReportIssues("Elfes")
	assert.Empty(t, rep.ByRule(RuleCities))
}

func TestCities_FrontMatterMustOpenFirstLine(t *testing.T) {
	files := healthyRace()
	files["02 - Lieux/Elfes/Sylvanor.md"] = "\n---\ntags: [capitale]\n---\n# Sylvanor\n"

	rep := newEngine(files).ReportIssues("Elfes")
	findings := rep.ByRule(RuleCities)

	require.Len(t, findings, 1)
	assert.Equal(t, MissingCapital, findings[0].Category)
	assert.False(t, rep.Cities[0].IsCapital)
}

func TestEngine_Cities(t *testing.T) {
	e := newEngine(healthyRace())

	cities, err := e.Cities("Elfes")
	require.NoError(t, err)
	require.Len(t, cities, MinCities)
	assert.Equal(t, "Capital", cities[0].Label())
	assert.Equal(t, "City", cities[1].Label())

	_, err = e.Cities("Nains")
	assert.ErrorIs(t, err, vault.ErrNotFound)
}

func TestMagicLinks_DisjointLinks(t *testing.T) {
	files := healthyRace()
	files["00 - Races/Elfes/Elfes.md"] = "# Culture\n## Rites\n![[Sylvanor]]\n# Magie\n## Écoles\n![[Foudre]]\n"

	rep := newEngine(files).ReportIssues("Elfes")
	findings := rep.ByRule(RuleMagicLinks)

	require.Len(t, findings, 1)
	assert.Equal(t, MissingMagicLink, findings[0].Category)
	assert.Equal(t, "No links to magic files found in 'Elfes.md'.", findings[0].Message)
	assert.Empty(t, rep.MagicLinks)
}

func TestMagicLinks_NormalisedAndDeduplicated(t *testing.T) {
	files := healthyRace()
	files["00 - Races/Elfes/Elfes.md"] = "# Culture\n## Rites\n![[ glace ]] ![[FEU]]\n# Magie\n## Écoles\n![[Feu]]\n"

	rep := newEngine(files).ReportIssues("Elfes")

	assert.Empty(t, rep.ByRule(RuleMagicLinks))
	assert.Equal(t, []string{"Glace", "Feu"}, rep.MagicLinks)
}

func TestMagicLinks_MissingRootDocument(t *testing.T) {
	files := healthyRace()
	delete(files, "00 - Races/Elfes/Elfes.md")

	rep := newEngine(files).ReportIssues("Elfes")
	findings := rep.ByRule(RuleMagicLinks)

	require.Len(t, findings, 1)
	assert.Equal(t, MissingDocument, findings[0].Category)
	assert.Equal(t, "Race file '00 - Races/Elfes/Elfes.md' not found.", findings[0].Message)
}

func TestMagicLinks_MissingMagicFolder(t *testing.T) {
	files := healthyRace()
	delete(files, "01 - Magies/Feu.md")
	delete(files, "01 - Magies/Glace.md")

	rep := newEngine(files).ReportIssues("Elfes")
	findings := rep.ByRule(RuleMagicLinks)

	require.Len(t, findings, 1)
	assert.Equal(t, DirectoryNotFound, findings[0].Category)
	assert.Equal(t, "Magic directory '01 - Magies' does not exist.", findings[0].Message)
}

func TestReportIssues_MissingRaceStops(t *testing.T) {
	rep := newEngine(healthyRace()).ReportIssues("Nains")

	require.Len(t, rep.Findings, 1)
	assert.Equal(t, RuleRace, rep.Findings[0].Rule)
	assert.Equal(t, DirectoryNotFound, rep.Findings[0].Category)
	assert.Equal(t, "Race directory '00 - Races/Nains' does not exist.", rep.Findings[0].Message)
	assert.Empty(t, rep.Cities)
}

func TestReportIssues_RuleOrder(t *testing.T) {
	files := healthyRace()
	files["00 - Races/Elfes/Elfes.md"] = "# Culture\n"
	delete(files, "02 - Lieux/Elfes/Sylvanor.md")

	rep := newEngine(files).ReportIssues("Elfes")

	var rules []Rule
	for _, f := range rep.Findings {
		if len(rules) == 0 || rules[len(rules)-1] != f.Rule {
			rules = append(rules, f.Rule)
		}
	}
	assert.Equal(t, []Rule{RuleHeaderParity, RuleCities, RuleMagicLinks}, rules)
}

func TestReport_WriteText(t *testing.T) {
	files := healthyRace()
	files["00 - Races/Elfes/Histoire.md"] = "# Culture\n## Rites\n"
	delete(files, "02 - Lieux/Elfes/Sylvanor.md")

	rep := newEngine(files).ReportIssues("Elfes")

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))
	assert.Equal(t, "Issues for race 'Elfes':\n"+
		"  Missing h1 in file 'Histoire.md': Magie\n"+
		"  Missing h2 in file 'Histoire.md': Écoles\n"+
		"  No capital city found for race 'Elfes' in '02 - Lieux'.\n"+
		"  Fewer than 5 cities found for race 'Elfes'. Current count: 4\n"+
		"Linked magic files found: Feu\n", buf.String())

	buf.Reset()
	require.NoError(t, newEngine(healthyRace()).ReportIssues("Elfes").WriteText(&buf))
	assert.Equal(t, "Issues for race 'Elfes':\n  No issues found.\nLinked magic files found: Feu\n", buf.String())
}

func TestReport_JSON(t *testing.T) {
	rep := newEngine(healthyRace()).ReportIssues("Nains")

	data, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"race": "Nains",
		"findings": [{
			"rule": "race",
			"category": "directory-not-found",
			"file": "00 - Races/Nains",
			"message": "Race directory '00 - Races/Nains' does not exist."
		}],
		"cities": [],
		"magic_links": []
	}`, string(data))
}
