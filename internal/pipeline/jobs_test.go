package pipeline

import (
	"testing"
	"time"

	"github.com/lexmx/articulado/internal/segment"
)

func TestNewJob_Defaults(t *testing.T) {
	job := NewJob("lb-42", "Ley")
	if job.ID == "" {
		t.Fatal("expected a generated job ID")
	}
	if job.LegalBasisID != "lb-42" {
		t.Errorf("expected legal basis %q, got %q", "lb-42", job.LegalBasisID)
	}
	if job.Classification != "Ley" {
		t.Errorf("expected classification %q, got %q", "Ley", job.Classification)
	}
	if job.Status != StatusPending {
		t.Errorf("expected status %q, got %q", StatusPending, job.Status)
	}
	if job.Phase != PhaseQueued {
		t.Errorf("expected phase %q, got %q", PhaseQueued, job.Phase)
	}

	other := NewJob("lb-42", "Ley")
	if other.ID == job.ID {
		t.Errorf("expected distinct job IDs, both were %q", job.ID)
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	cases := []struct {
		status JobStatus
		want   bool
	}{
		{StatusPending, false},
		{StatusActive, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusCancelled, true},
	}
	for _, c := range cases {
		if got := c.status.Terminal(); got != c.want {
			t.Errorf("Terminal(%q) = %v, want %v", c.status, got, c.want)
		}
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("lb-1", "Ley")

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusActive, PhaseReading},
		{StatusActive, PhaseExtracting},
		{StatusActive, PhaseValidating},
		{StatusCompleted, PhaseDone},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		if !job.SetStatus(tr.status, tr.phase) {
			t.Fatalf("SetStatus(%q, %q) was dropped", tr.status, tr.phase)
		}

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_CancelPending(t *testing.T) {
	job := NewJob("lb-1", "Ley")
	if !job.Cancel() {
		t.Fatal("expected cancel of a pending job to succeed")
	}
	if job.Status != StatusCancelled {
		t.Errorf("expected status %q, got %q", StatusCancelled, job.Status)
	}
	if job.Phase != PhaseCancelled {
		t.Errorf("expected phase %q, got %q", PhaseCancelled, job.Phase)
	}
}

func TestJob_CancelActive(t *testing.T) {
	job := NewJob("lb-1", "Ley")
	job.SetStatus(StatusActive, PhaseExtracting)
	if !job.Cancel() {
		t.Fatal("expected cancel of an active job to succeed")
	}
	if job.Status != StatusCancelled {
		t.Errorf("expected status %q, got %q", StatusCancelled, job.Status)
	}
}

func TestJob_CancelTerminalForbidden(t *testing.T) {
	for _, status := range []JobStatus{StatusCompleted, StatusFailed} {
		job := NewJob("lb-1", "Ley")
		job.SetStatus(status, PhaseDone)
		if job.Cancel() {
			t.Errorf("expected cancel of a %s job to be refused", status)
		}
		if job.Status != status {
			t.Errorf("expected status to stay %q, got %q", status, job.Status)
		}
	}
}

func TestJob_CancelTwice(t *testing.T) {
	job := NewJob("lb-1", "Ley")
	if !job.Cancel() {
		t.Fatal("expected first cancel to succeed")
	}
	if job.Cancel() {
		t.Error("expected second cancel to be refused")
	}
}

func TestJob_SetStatusAfterCancelDropped(t *testing.T) {
	job := NewJob("lb-1", "Ley")
	job.SetStatus(StatusActive, PhaseExtracting)
	job.Cancel()

	if job.SetStatus(StatusCompleted, PhaseDone) {
		t.Error("expected transition on a cancelled job to be dropped")
	}
	if job.Status != StatusCancelled {
		t.Errorf("expected status to stay %q, got %q", StatusCancelled, job.Status)
	}
}

func TestJob_SetProgressClamps(t *testing.T) {
	job := NewJob("lb-1", "Ley")

	job.SetProgress(-5)
	if job.Snapshot().Progress.Percent != 0 {
		t.Errorf("expected negative percent clamped to 0, got %d", job.Snapshot().Progress.Percent)
	}

	job.SetProgress(150)
	if job.Snapshot().Progress.Percent != 100 {
		t.Errorf("expected oversized percent clamped to 100, got %d", job.Snapshot().Progress.Percent)
	}

	job.SetProgress(42)
	if job.Snapshot().Progress.Percent != 42 {
		t.Errorf("expected percent 42, got %d", job.Snapshot().Progress.Percent)
	}
}

func TestJob_AddError(t *testing.T) {
	job := NewJob("lb-1", "Ley")
	job.AddError("read failed")
	job.AddError("second failure")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "read failed" {
		t.Errorf("expected first error %q, got %q", "read failed", snap.Progress.Errors[0])
	}
}

func TestJob_CompleteAttachesResult(t *testing.T) {
	job := NewJob("lb-1", "Ley")

	if job.Snapshot().Result != nil {
		t.Error("expected nil result before extraction")
	}

	if !job.Complete(segment.ExtractionResult{
		{Kind: segment.KindArticle, Title: "ARTÍCULO 1", Body: "Uno.", Order: 1},
		{Kind: segment.KindArticle, Title: "ARTÍCULO 2", Body: "Dos.", Order: 2},
	}) {
		t.Fatal("expected completion of a live job to succeed")
	}

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Errorf("expected status %q, got %q", StatusCompleted, snap.Status)
	}
	if snap.Phase != PhaseDone {
		t.Errorf("expected phase %q, got %q", PhaseDone, snap.Phase)
	}
	if snap.Progress.Percent != 100 {
		t.Errorf("expected percent 100, got %d", snap.Progress.Percent)
	}
	if len(snap.Result) != 2 {
		t.Fatalf("expected 2 segments in snapshot, got %d", len(snap.Result))
	}
	if snap.Progress.Segments != 2 {
		t.Errorf("expected segment count 2, got %d", snap.Progress.Segments)
	}
	if snap.Result[0].Title != "ARTÍCULO 1" {
		t.Errorf("expected first title %q, got %q", "ARTÍCULO 1", snap.Result[0].Title)
	}
}

func TestJob_CompleteAfterCancelDropped(t *testing.T) {
	// A cancel racing the final phase boundary must win: the snapshot may
	// never pair a cancelled status with a result.
	job := NewJob("lb-1", "Ley")
	job.SetStatus(StatusActive, PhaseValidating)
	if !job.Cancel() {
		t.Fatal("expected cancel of an active job to succeed")
	}

	if job.Complete(segment.ExtractionResult{
		{Kind: segment.KindArticle, Title: "ARTÍCULO 1", Body: "Uno.", Order: 1},
	}) {
		t.Fatal("expected completion of a cancelled job to be refused")
	}

	snap := job.Snapshot()
	if snap.Status != StatusCancelled {
		t.Errorf("expected status to stay %q, got %q", StatusCancelled, snap.Status)
	}
	if snap.Result != nil {
		t.Errorf("expected no result on a cancelled job, got %d segments", len(snap.Result))
	}
	if snap.Progress.Segments != 0 {
		t.Errorf("expected segment count 0, got %d", snap.Progress.Segments)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return a non-nil errors slice.
	job := NewJob("lb-1", "Ley")
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJob_TextRoundTrip(t *testing.T) {
	job := NewJob("lb-1", "Ley")
	job.SetText("ARTÍCULO 1. Texto.")
	if got := job.Text(); got != "ARTÍCULO 1. Texto." {
		t.Errorf("expected stored text back, got %q", got)
	}
}

func TestJob_SetFileData(t *testing.T) {
	job := NewJob("lb-1", "Ley")
	data := []byte("file content here")
	job.SetFileData("ley.txt", data)

	if got := job.FileData(); string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
	if job.Snapshot().Filename != "ley.txt" {
		t.Errorf("expected filename %q, got %q", "ley.txt", job.Snapshot().Filename)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("lb-1", "Ley")
	store.Put(job)

	got := store.Get(job.ID)
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != job.ID {
		t.Errorf("expected ID %q, got %q", job.ID, got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := NewJob("lb-old", "Ley")
	expired.SetStatus(StatusCompleted, PhaseDone)
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := NewJob("lb-new", "Ley")
	fresh.SetStatus(StatusCompleted, PhaseDone)
	store.Put(fresh)

	store.Cleanup()

	if store.Get(expired.ID) != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupKeepsInFlightJobs(t *testing.T) {
	store := NewJobStore(time.Nanosecond)

	pending := NewJob("lb-pending", "Ley")
	store.Put(pending)
	active := NewJob("lb-active", "Ley")
	active.SetStatus(StatusActive, PhaseExtracting)
	store.Put(active)

	time.Sleep(time.Millisecond)
	store.Cleanup()

	if store.Get(pending.ID) == nil {
		t.Error("expected pending job to survive cleanup")
	}
	if store.Get(active.ID) == nil {
		t.Error("expected active job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on an empty store.
	store.Cleanup()
}
