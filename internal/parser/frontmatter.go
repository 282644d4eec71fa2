package parser

import (
	"bytes"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/vaultlint/internal/doctree"
)

// Only `---` fenced YAML counts as front matter in a vault. The library's
// TOML and JSON defaults would misread `+++` or `{` lines as metadata.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// splitFrontMatter separates the leading front-matter block from the body.
// The block must open on the very first line with exactly `---`. An
// unterminated block is not front matter: the whole input is body.
func splitFrontMatter(src []byte) (props *doctree.Mapping, body []byte, found bool, err error) {
	props = doctree.NewMapping()
	if !bytes.HasPrefix(src, []byte("---\n")) && !bytes.HasPrefix(src, []byte("---\r\n")) {
		return props, src, false, nil
	}
	body, err = frontmatter.Parse(bytes.NewReader(src), props, yamlFormat)
	if err != nil {
		return nil, nil, false, &FrontMatterError{Err: err}
	}
	// The body is everything after the closing delimiter, so it only
	// shrinks when a block was consumed.
	return props, body, len(body) < len(src), nil
}
