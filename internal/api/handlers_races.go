package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/vaultlint/internal/parser"
	"github.com/dgallion1/vaultlint/internal/vault"
)

// handleListRaces lists the races of the vault.
func (s *Server) handleListRaces(w http.ResponseWriter, r *http.Request) {
	races, err := s.vault.Races()
	if err != nil {
		errorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"races": races})
}

// handleRaceIssues runs the consistency report for one race.
func (s *Server) handleRaceIssues(w http.ResponseWriter, r *http.Request) {
	race, err := s.vault.LookupRace(chi.URLParam(r, "race"))
	if err != nil {
		errorFor(w, err)
		return
	}

	start := time.Now()
	rep := s.engine.ReportIssues(race)
	took := time.Since(start)

	s.stats.Record(race, took, len(rep.Findings))
	s.metrics.ObserveReport(rep, took)
	s.log.Info("report", "race", race, "findings", len(rep.Findings), "duration_ms", took.Milliseconds())

	writeJSON(w, http.StatusOK, rep)
}

// handleRaceDocument returns the parsed race document, optionally with
// content lines projected to plain text.
func (s *Server) handleRaceDocument(w http.ResponseWriter, r *http.Request) {
	race, err := s.vault.ResolveRace(chi.URLParam(r, "race"))
	if err != nil {
		errorFor(w, err)
		return
	}
	doc, err := parser.ParseFile(s.vault.FS(), race.Document)
	if err != nil {
		errorFor(w, err)
		return
	}
	if r.URL.Query().Get("plain") == "true" {
		doc = parser.PlainDocument(doc)
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleRaceCities lists a race's cities with their capital flag.
func (s *Server) handleRaceCities(w http.ResponseWriter, r *http.Request) {
	race, err := s.vault.LookupRace(chi.URLParam(r, "race"))
	if err != nil {
		errorFor(w, err)
		return
	}
	cities, err := s.engine.Cities(race)
	if err != nil {
		errorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"race": race, "cities": cities})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// errorFor maps vault and parser errors to HTTP statuses.
func errorFor(w http.ResponseWriter, err error) {
	var fmErr *parser.FrontMatterError
	switch {
	case errors.Is(err, vault.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, vault.ErrEscapesRoot):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &fmErr):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}
