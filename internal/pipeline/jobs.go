package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexmx/articulado/internal/segment"
)

// JobStatus represents the lifecycle state of an extraction job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusActive    JobStatus = "active"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether a job in this status is finished for good.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Worker phases, reported alongside the status while a job is active.
const (
	PhaseQueued     = "queued"
	PhaseReading    = "reading"
	PhaseExtracting = "extracting"
	PhaseValidating = "validating"
	PhaseDone       = "done"
	PhaseCancelled  = "cancelled"
)

// Job tracks the state of a single extraction.
type Job struct {
	mu sync.Mutex

	ID             string `json:"job_id"`
	LegalBasisID   string `json:"legal_basis_id"`
	Classification string `json:"classification"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename,omitempty"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	text     string
	fileData []byte
	result   segment.ExtractionResult
}

// Progress tracks extraction progress.
type Progress struct {
	Percent  int      `json:"percent"`
	Segments int      `json:"segments"`
	Errors   []string `json:"errors"`
}

// NewJob creates a pending job with a fresh ID.
func NewJob(legalBasisID, classification string) *Job {
	now := time.Now()
	return &Job{
		ID:             uuid.NewString(),
		LegalBasisID:   legalBasisID,
		Classification: classification,
		Status:         StatusPending,
		Phase:          PhaseQueued,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// SetStatus updates job status atomically. A cancelled job keeps its
// cancelled state: late transitions from a worker report false and are
// dropped.
func (j *Job) SetStatus(status JobStatus, phase string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status == StatusCancelled {
		return false
	}
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
	return true
}

// Cancel moves the job to cancelled. It reports false when the job already
// reached a terminal state: completed and failed jobs cannot be cancelled.
func (j *Job) Cancel() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status.Terminal() {
		return false
	}
	j.Status = StatusCancelled
	j.Phase = PhaseCancelled
	j.UpdatedAt = time.Now()
	return true
}

// SetProgress records completion percent, clamped to 0..100.
func (j *Job) SetProgress(percent int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	j.Progress.Percent = percent
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Errors = append(j.Progress.Errors, err)
	j.UpdatedAt = time.Now()
}

// Complete attaches the extracted segments and marks the job completed in
// one step, so no snapshot can pair a result with a non-completed status.
// Like SetStatus it reports false on a cancelled job; the result is then
// dropped.
func (j *Job) Complete(res segment.ExtractionResult) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status == StatusCancelled {
		return false
	}
	j.result = res
	j.Progress.Segments = len(res)
	j.Progress.Percent = 100
	j.Status = StatusCompleted
	j.Phase = PhaseDone
	j.UpdatedAt = time.Now()
	return true
}

// SetText sets the raw text to extract from.
func (j *Job) SetText(text string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.text = text
}

// Text returns the raw text.
func (j *Job) Text() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.text
}

// SetFileData stores an uploaded file for the reading phase.
func (j *Job) SetFileData(filename string, data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Filename = filename
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// expired reports whether the job reached a terminal state longer than ttl
// ago. In-flight jobs never expire.
func (j *Job) expired(now time.Time, ttl time.Duration) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Status.Terminal() && now.Sub(j.UpdatedAt) > ttl
}

// JobSnapshot is a read-only, JSON-safe copy of job state. Result is non-nil
// only once the job has completed.
type JobSnapshot struct {
	ID             string                   `json:"job_id"`
	LegalBasisID   string                   `json:"legal_basis_id"`
	Classification string                   `json:"classification"`
	Status         JobStatus                `json:"status"`
	Phase          string                   `json:"phase"`
	Filename       string                   `json:"filename,omitempty"`
	Progress       Progress                 `json:"progress"`
	Result         segment.ExtractionResult `json:"result"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:             j.ID,
		LegalBasisID:   j.LegalBasisID,
		Classification: j.Classification,
		Status:         j.Status,
		Phase:          j.Phase,
		Filename:       j.Filename,
		Progress: Progress{
			Percent:  j.Progress.Percent,
			Segments: j.Progress.Segments,
			Errors:   errs,
		},
		Result:    j.result,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes jobs that have been terminal for longer than the TTL.
// Pending and active jobs are never evicted.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if job.expired(now, s.ttl) {
			delete(s.jobs, id)
		}
	}
}
