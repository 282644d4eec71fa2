package vault

import (
	"io/fs"
	"path"
	"strings"
)

// Cursor is a working directory inside the vault, used by the shell's
// `ls` and `cd`.
type Cursor struct {
	v   *Vault
	dir string
}

// Cursor returns a cursor positioned at the vault root.
func (v *Vault) Cursor() *Cursor {
	return &Cursor{v: v, dir: "."}
}

// Dir is the vault-relative working directory, "." at the root.
func (c *Cursor) Dir() string { return c.dir }

// Display joins the vault root and the working directory for messages.
func (c *Cursor) Display() string {
	if c.v.root == "" {
		return c.dir
	}
	if c.dir == "." {
		return c.v.root
	}
	return path.Join(c.v.root, c.dir)
}

// List returns the visible folders and files of the working directory.
func (c *Cursor) List() (folders, files []string, err error) {
	entries, err := fs.ReadDir(c.v.fsys, c.dir)
	if err != nil {
		return nil, nil, &NotFoundError{What: "path", Path: c.dir}
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.IsDir() {
			folders = append(folders, e.Name())
		} else {
			files = append(files, e.Name())
		}
	}
	return folders, files, nil
}

// Change moves the cursor. Each slash-separated element is either ".." or
// a folder matched by cleaned name, case-insensitively. The cursor only
// moves when every element resolves.
func (c *Cursor) Change(target string) error {
	target = strings.Trim(strings.TrimSpace(target), "/")
	dir := c.dir
	for _, elem := range strings.Split(target, "/") {
		switch elem {
		case "", ".":
			continue
		case "..":
			if dir == "." {
				return ErrEscapesRoot
			}
			dir = path.Dir(dir)
		default:
			next, err := c.child(dir, elem)
			if err != nil {
				return err
			}
			dir = next
		}
	}
	c.dir = dir
	return nil
}

func (c *Cursor) child(dir, name string) (string, error) {
	entries, err := fs.ReadDir(c.v.fsys, dir)
	if err != nil {
		return "", &NotFoundError{What: "folder", Path: name}
	}
	want := strings.ToLower(name)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if strings.ToLower(e.Name()) == want || strings.ToLower(CleanName(e.Name())) == want {
			return path.Join(dir, e.Name()), nil
		}
	}
	return "", &NotFoundError{What: "folder", Path: name}
}

// Folders lists the cleaned names of the working directory's folders, for
// completion.
func (c *Cursor) Folders() []string {
	folders, _, err := c.List()
	if err != nil {
		return nil
	}
	out := make([]string, len(folders))
	for i, f := range folders {
		out[i] = CleanName(f)
	}
	return out
}
