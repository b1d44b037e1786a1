package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ex := s.orchestrator.Extractor()
	writeJSON(w, http.StatusOK, map[string]any{
		"extraction":     ex.Stats().Snapshot(),
		"cached_results": ex.CachedResults(),
		"queue_depth":    s.orchestrator.QueueDepth(),
		"pdf_engine":     s.cfg.PDFEngine,
	})
}
