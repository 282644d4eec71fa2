package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/vaultlint/internal/report"
	"github.com/dgallion1/vaultlint/internal/vault"
)

func writeVault(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"00 - Races/Elfes/Elfes.md":    "---\nage: 3000\n---\n# Culture\nIntro ![[Feu]]\n## Rites\n# Magie\n",
		"00 - Races/Elfes/Histoire.md": "# Culture\n## Rites\n# Magie\n",
		"01 - Magies/Feu.md":           "# Feu\n",
		"02 - Lieux/Elfes/Sylvanor.md": "---\ntags: [capitale]\n---\n",
		"02 - Lieux/Elfes/Lunebois.md": "# Lunebois\n",
	}
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

// execute runs the root command with a clean flag and environment state.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"VAULTLINT_CONFIG", "VAULTLINT_VAULT_PATH", "PORT", "VAULTLINT_API_KEY", "VAULTLINT_LOG_LEVEL", "VAULTLINT_COLOR"} {
		t.Setenv(k, "")
	}
	vaultFlag, configFlag, verbose = "", "", false
	reportJSON, reportWatch, reportStrict = false, false, false
	parsePlain, parseMarkdown = false, false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestReportCmd_Text(t *testing.T) {
	root := writeVault(t)

	out, err := execute(t, "", "--vault", root, "report", "elfes")
	require.NoError(t, err)
	assert.Equal(t, "Issues for race 'Elfes':\n"+
		"  Fewer than 5 cities found for race 'Elfes'. Current count: 2\n"+
		"Linked magic files found: Feu\n", out)
}

func TestReportCmd_JSON(t *testing.T) {
	root := writeVault(t)

	out, err := execute(t, "", "--vault", root, "report", "Elfes", "--json")
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "Elfes", rep.Race)
	require.Len(t, rep.Findings, 1)
	assert.Equal(t, report.LowCityCount, rep.Findings[0].Category)
	assert.Equal(t, 2, rep.Findings[0].Count)
	assert.Equal(t, []string{"Feu"}, rep.MagicLinks)
	assert.Len(t, rep.Cities, 2)
}

func TestReportCmd_UnknownRace(t *testing.T) {
	root := writeVault(t)

	out, err := execute(t, "", "--vault", root, "report", "dragons")
	require.NoError(t, err)
	assert.Equal(t, "Issues for race 'dragons':\n"+
		"  Race directory '00 - Races/dragons' does not exist.\n", out)
}

func TestReportCmd_Strict(t *testing.T) {
	root := writeVault(t)

	_, err := execute(t, "", "--vault", root, "report", "Elfes", "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 issues found")
}

func TestReportCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "", "report")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestReportCmd_ConfigFile(t *testing.T) {
	root := writeVault(t)
	conf := filepath.Join(t.TempDir(), "vaultlint.toml")
	require.NoError(t, os.WriteFile(conf, []byte("vault_path = '"+root+"'\n"), 0o644))

	out, err := execute(t, "", "--config", conf, "report", "Elfes")
	require.NoError(t, err)
	assert.Contains(t, out, "Issues for race 'Elfes':")
	assert.Equal(t, root, cfg.VaultPath)
}

func TestMissingVault(t *testing.T) {
	_, err := execute(t, "", "--vault", filepath.Join(t.TempDir(), "nope"), "report", "Elfes")
	require.Error(t, err)
	assert.ErrorIs(t, err, vault.ErrNotFound)
}

func TestParseCmd(t *testing.T) {
	dir := t.TempDir()
	note := filepath.Join(dir, "note.md")
	require.NoError(t, os.WriteFile(note, []byte("---\ntitle: Feu\n---\n# A\n**vif** ![[Braise]]\n"), 0o644))

	out, err := execute(t, "", "parse", note)
	require.NoError(t, err)
	assert.Contains(t, out, `"file_name": "note.md"`)
	assert.Contains(t, out, `"heading": "A"`)
	assert.Contains(t, out, "**vif**")

	out, err = execute(t, "", "parse", note, "--plain")
	require.NoError(t, err)
	assert.NotContains(t, out, "**vif**")
	assert.Contains(t, out, "Braise")

	out, err = execute(t, "", "parse", note, "--markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "title: Feu\n")
	assert.Contains(t, out, "# A\n")

	_, err = execute(t, "", "parse", filepath.Join(dir, "missing.md"))
	assert.Error(t, err)
}

func TestShellCmd(t *testing.T) {
	root := writeVault(t)

	out, err := execute(t, "open elfes\ncity\nexit\n", "--vault", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Type 'help' for the list of commands.")
	assert.Contains(t, out, "Race 'Elfes' opened.")
	assert.Contains(t, out, "Capital: Sylvanor")
	assert.Contains(t, out, "Exiting the program.")

	out, err = execute(t, "ls\n", "--vault", root, "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "📁 Races")
}

func TestNewHTTPServer(t *testing.T) {
	root := writeVault(t)
	_, err := execute(t, "", "--vault", root, "report", "Elfes")
	require.NoError(t, err)

	v, err := vault.Open(root)
	require.NoError(t, err)
	srv := newHTTPServer(v, logger)
	assert.Equal(t, ":8091", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/races", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Elfes")
}
