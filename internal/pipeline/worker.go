package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexmx/articulado/internal/extractor"
	"github.com/lexmx/articulado/internal/ingest"
	"github.com/lexmx/articulado/internal/segment"
)

// Worker processes a single extraction job.
type Worker struct {
	stats      *extractor.Stats
	log        *slog.Logger
	ingestOpts ingest.Options

	minSegments int
	minTextKB   int
}

func NewWorker(stats *extractor.Stats, log *slog.Logger, ingestOpts ingest.Options, minSegments, minTextKB int) *Worker {
	return &Worker{
		stats:       stats,
		log:         log,
		ingestOpts:  ingestOpts,
		minSegments: minSegments,
		minTextKB:   minTextKB,
	}
}

// Process runs the extraction pipeline for a job: read the source into raw
// text, extract the ordered segments, validate the result.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "legal_basis_id", job.LegalBasisID, "classification", job.Classification)
	start := time.Now()

	// Phase 1: Read.
	if !w.advance(ctx, job, PhaseReading, 10) {
		log.Info("job stopped before reading")
		return
	}
	text, err := w.readText(job)
	if err != nil {
		log.Error("read failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, PhaseReading)
		return
	}

	// Phase 2: Extract.
	if !w.advance(ctx, job, PhaseExtracting, 25) {
		log.Info("job stopped before extraction")
		return
	}
	ext, ok := extractor.ForClassification(job.Classification, text)
	if !ok {
		log.Warn("unknown classification")
		job.AddError(fmt.Sprintf("unknown classification: %q", job.Classification))
		job.SetStatus(StatusFailed, PhaseExtracting)
		return
	}
	result := ext.Extract()

	// Phase 3: Validate.
	if !w.advance(ctx, job, PhaseValidating, 90) {
		log.Info("job stopped before validation")
		return
	}
	if err := result.Validate(); err != nil {
		log.Error("invalid result", "error", err)
		job.AddError(fmt.Sprintf("validate: %s", err))
		job.SetStatus(StatusFailed, PhaseValidating)
		return
	}
	if w.degenerate(text, result) {
		log.Warn("degenerate result", "segments", len(result), "text_bytes", len(text))
		job.AddError(fmt.Sprintf("degenerate result: %d segments from %d bytes of text", len(result), len(text)))
		job.SetStatus(StatusFailed, PhaseValidating)
		return
	}

	if !job.Complete(result) {
		log.Info("job cancelled before completion")
		return
	}
	w.stats.Record(time.Since(start), len(result))
	log.Info("extraction complete", "segments", len(result), "duration_ms", time.Since(start).Milliseconds())
}

// advance moves an in-flight job to the next phase. It reports false when
// the job was cancelled or the worker is shutting down. Extraction itself is
// not interruptible; cancellation takes effect on these boundaries.
func (w *Worker) advance(ctx context.Context, job *Job, phase string, percent int) bool {
	select {
	case <-ctx.Done():
		job.AddError("worker shutting down")
		job.SetStatus(StatusFailed, phase)
		return false
	default:
	}
	if !job.SetStatus(StatusActive, phase) {
		return false
	}
	job.SetProgress(percent)
	return true
}

// readText recovers the raw text for a job, running uploaded files through
// the matching ingest reader.
func (w *Worker) readText(job *Job) (string, error) {
	data := job.FileData()
	if len(data) == 0 {
		return job.Text(), nil
	}
	r, err := ingest.ForFile(job.Filename, w.ingestOpts)
	if err != nil {
		return "", err
	}
	text, err := r.ReadText(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", job.Filename, err)
	}
	return text, nil
}

// degenerate reports whether a result is suspiciously small for the amount
// of text scanned. A document of at least minTextKB KB that yields fewer
// than minSegments segments fails instead of completing near-empty; such
// documents usually follow an unregistered heading convention.
func (w *Worker) degenerate(text string, result segment.ExtractionResult) bool {
	if w.minSegments <= 0 {
		return false
	}
	if len(text) < w.minTextKB*1024 {
		return false
	}
	return len(result) < w.minSegments
}
