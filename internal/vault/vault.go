// Package vault resolves races, locations and magic references inside a
// vault directory tree. All paths it returns are slash-separated and
// relative to the vault root.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Fixed directory layout of a vault.
const (
	RacesDir     = "00 - Races"
	MagicDir     = "01 - Magies"
	LocationsDir = "02 - Lieux"
)

var (
	// ErrNotFound is wrapped by every NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrEscapesRoot is returned when navigation would leave the vault.
	ErrEscapesRoot = errors.New("path escapes vault root")
)

// NotFoundError reports a missing race, location or magic file or folder.
type NotFoundError struct {
	What string
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.What, e.Path)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Vault gives read access to one vault tree.
type Vault struct {
	root string
	fsys fs.FS
}

// Open returns a Vault rooted at the directory root.
func Open(root string) (*Vault, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{What: "vault", Path: root}
		}
		return nil, fmt.Errorf("open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open vault: %s is not a directory", root)
	}
	return &Vault{root: root, fsys: os.DirFS(root)}, nil
}

// New wraps an arbitrary filesystem, mainly for tests.
func New(fsys fs.FS) *Vault {
	return &Vault{fsys: fsys}
}

// Root is the on-disk root, empty for vaults built with New.
func (v *Vault) Root() string { return v.root }

func (v *Vault) FS() fs.FS { return v.fsys }

// OSPath maps a vault-relative path to the host filesystem.
func (v *Vault) OSPath(rel string) string {
	if v.root == "" {
		return filepath.FromSlash(rel)
	}
	return filepath.Join(v.root, filepath.FromSlash(rel))
}

// RaceFolder returns `00 - Races/<race>`.
func (v *Vault) RaceFolder(race string) (string, error) {
	if !validName(race) {
		return "", &NotFoundError{What: "race directory", Path: path.Join(RacesDir, race)}
	}
	return v.dir("race directory", path.Join(RacesDir, race))
}

// RaceDocumentPaths lists every Markdown file below the race folder,
// recursively, sorted.
func (v *Vault) RaceDocumentPaths(race string) ([]string, error) {
	dir, err := v.RaceFolder(race)
	if err != nil {
		return nil, err
	}
	return v.glob(dir, "**/*.md")
}

// RaceRootDocument returns `00 - Races/<race>/<race>.md`.
func (v *Vault) RaceRootDocument(race string) (string, error) {
	if !validName(race) {
		return "", &NotFoundError{What: "race file", Path: path.Join(RacesDir, race, race+".md")}
	}
	return v.file("race file", path.Join(RacesDir, race, race+".md"))
}

// LocationFolder returns `02 - Lieux/<race>`.
func (v *Vault) LocationFolder(race string) (string, error) {
	if !validName(race) {
		return "", &NotFoundError{What: "city directory", Path: path.Join(LocationsDir, race)}
	}
	return v.dir("city directory", path.Join(LocationsDir, race))
}

// MagicFolder returns `01 - Magies`.
func (v *Vault) MagicFolder() (string, error) {
	return v.dir("magic directory", MagicDir)
}

// MarkdownFiles lists the Markdown files directly inside dir, sorted.
func (v *Vault) MarkdownFiles(dir string) ([]string, error) {
	if _, err := v.dir("directory", dir); err != nil {
		return nil, err
	}
	return v.glob(dir, "*.md")
}

func (v *Vault) glob(dir, pattern string) ([]string, error) {
	sub, err := fs.Sub(v.fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	matches, err := doublestar.Glob(sub, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s/%s: %w", dir, pattern, err)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, path.Join(dir, m))
	}
	sort.Strings(out)
	return out, nil
}

func (v *Vault) dir(what, name string) (string, error) {
	info, err := fs.Stat(v.fsys, name)
	if err != nil || !info.IsDir() {
		return "", &NotFoundError{What: what, Path: name}
	}
	return name, nil
}

func (v *Vault) file(what, name string) (string, error) {
	info, err := fs.Stat(v.fsys, name)
	if err != nil || info.IsDir() {
		return "", &NotFoundError{What: what, Path: name}
	}
	return name, nil
}

// CleanName drops the ordering prefix of a vault folder name:
// "00 - Races" becomes "Races".
func CleanName(name string) string {
	if _, after, ok := strings.Cut(name, " - "); ok {
		return after
	}
	return name
}

// validName rejects names that would select another folder than the one
// they name.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// ReportDirs returns the host directories a race report reads from, for
// watching. Some may not exist.
func (v *Vault) ReportDirs(race string) []string {
	return []string{
		v.OSPath(path.Join(RacesDir, race)),
		v.OSPath(path.Join(LocationsDir, race)),
		v.OSPath(MagicDir),
	}
}
