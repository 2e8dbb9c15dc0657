package api

import (
	"encoding/json"
	"net/http"
)

// handleExtractorStats reports the rolling extraction latency and segment
// count statistics plus the current queue depth.
func (s *Server) handleExtractorStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.orchestrator.Stats().Snapshot(),
	})
}
