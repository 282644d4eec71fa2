package api

import (
	"net/http"
)

func (s *Server) handleReportStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"window": s.stats.maxAge.String(),
		"stats":  s.stats.Snapshot(),
	})
}
