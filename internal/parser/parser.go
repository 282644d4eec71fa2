package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/dgallion1/vaultlint/internal/doctree"
)

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ParseFile reads name from fsys and parses it. Read failures come back as
// *ReadError and malformed front matter as *FrontMatterError.
func ParseFile(fsys fs.FS, name string) (*doctree.Document, error) {
	p, err := ForFile(name)
	if err != nil {
		return nil, &ReadError{Path: name, Err: err}
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, &ReadError{Path: name, Err: err}
	}

	doc, err := p.Parse(bytes.NewReader(data), path.Base(name))
	if err != nil {
		var fmErr *FrontMatterError
		if errors.As(err, &fmErr) {
			fmErr.Path = name
			return nil, err
		}
		return nil, &ReadError{Path: name, Err: err}
	}
	doc.Path = name
	return doc, nil
}
