package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lexmx/articulado/internal/extractor"
)

// maxSyncBytes caps the synchronous endpoint; larger documents go through
// the job queue.
const maxSyncBytes = 1 << 20

type extractRequest struct {
	Classification string `json:"classification"`
	Text           string `json:"text"`
}

// handleExtract runs an extraction inline and returns the segments.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSyncBytes)

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Classification == "" {
		jsonError(w, "classification is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, ok := extractor.Extract(req.Classification, req.Text)
	if !ok {
		jsonError(w, fmt.Sprintf("unknown classification: %q", req.Classification), http.StatusUnprocessableEntity)
		return
	}
	s.orchestrator.Stats().Record(time.Since(start), len(result))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"classification": req.Classification,
		"count":          len(result),
		"segments":       result,
	})
}

// handleClassifications lists the registered rule set tags.
func (s *Server) handleClassifications(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"classifications": extractor.Classifications(),
	})
}
