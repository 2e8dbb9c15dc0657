package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lexmx/articulado/internal/extractor"
	"github.com/lexmx/articulado/internal/ingest"
	"github.com/lexmx/articulado/internal/pipeline"
)

type enqueueRequest struct {
	LegalBasisID   string `json:"legal_basis_id"`
	Classification string `json:"classification"`
	Text           string `json:"text"`
}

// handleEnqueue queues an extraction over raw text.
func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.LegalBasisID == "" {
		jsonError(w, "legal_basis_id is required", http.StatusBadRequest)
		return
	}
	if req.Classification == "" {
		jsonError(w, "classification is required", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}
	if !extractor.IsRegistered(req.Classification) {
		jsonError(w, fmt.Sprintf("unknown classification: %q", req.Classification), http.StatusUnprocessableEntity)
		return
	}

	job := pipeline.NewJob(req.LegalBasisID, req.Classification)
	job.SetText(req.Text)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJobAccepted(w, job)
}

// handleEnqueueUpload queues an extraction over an uploaded document.
func (s *Server) handleEnqueueUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size, with headroom for the form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	legalBasisID := r.FormValue("legal_basis_id")
	if legalBasisID == "" {
		jsonError(w, "legal_basis_id is required", http.StatusBadRequest)
		return
	}
	classification := r.FormValue("classification")
	if classification == "" {
		jsonError(w, "classification is required", http.StatusBadRequest)
		return
	}
	if !extractor.IsRegistered(classification) {
		jsonError(w, fmt.Sprintf("unknown classification: %q", classification), http.StatusUnprocessableEntity)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !ingest.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	job := pipeline.NewJob(legalBasisID, classification)
	job.SetFileData(filename, data)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJobAccepted(w, job)
}

// handleJobStatus returns the current snapshot of a job, including the
// extracted segments once it has completed.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

// handleJobCancel cancels a queued or active job. Jobs that already reached
// a terminal state cannot be cancelled.
func (s *Server) handleJobCancel(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !job.Cancel() {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"status":  job.Snapshot().Status,
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"status":  pipeline.StatusCancelled,
	})
}

func writeJobAccepted(w http.ResponseWriter, job *pipeline.Job) {
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/extractions/%s", snap.ID),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
