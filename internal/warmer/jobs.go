package warmer

import (
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// JobStatus represents the state of a revalidation job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusFetching  JobStatus = "fetching"
	StatusRendering JobStatus = "rendering"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Kind selects what a job refreshes.
type Kind string

const (
	// KindAll re-renders every post plus the index and sitemap.
	KindAll Kind = "all"
	// KindSlug re-renders one post plus the index and sitemap.
	KindSlug Kind = "slug"
)

// Job tracks the state of a single revalidation run.
type Job struct {
	mu sync.Mutex

	ID     string    `json:"job_id"`
	Kind   Kind      `json:"kind"`
	Slug   string    `json:"slug,omitempty"`
	Reason string    `json:"reason"`
	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	errors []string
}

// Progress tracks rendering progress.
type Progress struct {
	TotalPages    int      `json:"total_pages"`
	PagesRendered int      `json:"pages_rendered"`
	PagesFailed   int      `json:"pages_failed"`
	Errors        []string `json:"errors"`
}

// NewJob creates a queued job. A non-empty slug makes it a KindSlug job.
func NewJob(slug, reason string) *Job {
	now := time.Now()
	j := &Job{
		ID:        strings.ToLower(ulid.Make().String()),
		Kind:      KindAll,
		Reason:    reason,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if slug != "" {
		j.Kind = KindSlug
		j.Slug = slug
	}
	return j
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

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalPages records how many pages the job will render.
func (j *Job) SetTotalPages(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalPages = n
	j.UpdatedAt = time.Now()
}

// PageDone records the outcome of one page.
func (j *Job) PageDone(ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if ok {
		j.Progress.PagesRendered++
	} else {
		j.Progress.PagesFailed++
	}
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Kind      Kind      `json:"kind"`
	Slug      string    `json:"slug,omitempty"`
	Reason    string    `json:"reason"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	return JobSnapshot{
		ID:     j.ID,
		Kind:   j.Kind,
		Slug:   j.Slug,
		Reason: j.Reason,
		Status: j.Status,
		Phase:  j.Phase,
		Progress: Progress{
			TotalPages:    j.Progress.TotalPages,
			PagesRendered: j.Progress.PagesRendered,
			PagesFailed:   j.Progress.PagesFailed,
			Errors:        errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
