package api

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/dgallion1/vaultlint/internal/parser"
)

// handleGetDocument parses any Markdown file of the vault by its
// vault-relative path.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	p := strings.Trim(r.URL.Query().Get("path"), "/")
	if p == "" {
		jsonError(w, "path query parameter is required", http.StatusBadRequest)
		return
	}
	if !fs.ValidPath(p) {
		jsonError(w, "invalid path: "+p, http.StatusBadRequest)
		return
	}
	if !parser.IsSupportedExtension(p) {
		jsonError(w, "not a markdown document: "+p, http.StatusBadRequest)
		return
	}

	doc, err := parser.ParseFile(s.vault.FS(), p)
	if err != nil {
		errorFor(w, err)
		return
	}
	if r.URL.Query().Get("plain") == "true" {
		doc = parser.PlainDocument(doc)
	}
	writeJSON(w, http.StatusOK, doc)
}
