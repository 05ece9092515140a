// Package jobs tracks asynchronous comparison jobs for the HTTP server.
// Jobs live in memory only; the store evicts finished jobs after a TTL.
package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/MeKo-Tech/pdiff/internal/compare"
	"github.com/gofrs/uuid"
)

// Status represents the state of a comparison job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Progress is a point-in-time snapshot of how far a job has come.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Step    string `json:"step,omitempty"`
}

// Job tracks the state of a single comparison.
type Job struct {
	mu sync.Mutex

	ID        string
	LeftName  string // original upload filename, informational
	RightName string

	LeftPath  string // input files on disk
	RightPath string
	OutDir    string

	status    Status
	progress  Progress
	result    *compare.Result
	artifacts *compare.Artifacts
	errMsg    string

	CreatedAt time.Time
	updatedAt time.Time
}

// View is the serializable snapshot of a job.
type View struct {
	ID        string    `json:"job_id"`
	Status    Status    `json:"status"`
	LeftName  string    `json:"left_name,omitempty"`
	RightName string    `json:"right_name,omitempty"`
	Progress  Progress  `json:"progress"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewJob creates a pending job with a fresh identifier.
func NewJob(leftName, rightName, leftPath, rightPath, outDir string) (*Job, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate job id: %w", err)
	}
	now := time.Now()
	return &Job{
		ID:        id.String(),
		LeftName:  leftName,
		RightName: rightName,
		LeftPath:  leftPath,
		RightPath: rightPath,
		OutDir:    outDir,
		status:    StatusPending,
		CreatedAt: now,
		updatedAt: now,
	}, nil
}

// SetStatus updates the job status atomically.
func (j *Job) SetStatus(s Status) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = s
	j.updatedAt = time.Now()
}

// SetProgress records a progress snapshot.
func (j *Job) SetProgress(p Progress) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.progress = p
	j.updatedAt = time.Now()
}

// Complete marks the job finished and records its result and artifacts.
func (j *Job) Complete(res *compare.Result, art *compare.Artifacts) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = StatusCompleted
	j.result = res
	j.artifacts = art
	j.updatedAt = time.Now()
}

// Fail marks the job failed with the given message.
func (j *Job) Fail(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = StatusFailed
	j.errMsg = msg
	j.updatedAt = time.Now()
}

// Status returns the current job status.
func (j *Job) CurrentStatus() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Result returns the comparison result, or nil while the job is unfinished.
func (j *Job) Result() *compare.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// Artifacts returns the artifact paths, or nil while the job is unfinished.
func (j *Job) Artifacts() *compare.Artifacts {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.artifacts
}

// Snapshot returns a serializable copy of the job state.
func (j *Job) Snapshot() View {
	j.mu.Lock()
	defer j.mu.Unlock()
	return View{
		ID:        j.ID,
		Status:    j.status,
		LeftName:  j.LeftName,
		RightName: j.RightName,
		Progress:  j.progress,
		Error:     j.errMsg,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.updatedAt,
	}
}

// Store is a thread-safe in-memory job registry with TTL eviction.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

// NewStore creates a store that evicts jobs untouched for ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{jobs: make(map[string]*Job), ttl: ttl}
}

// Put registers a job.
func (s *Store) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

// Get returns the job with the given id, or nil.
func (s *Store) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs and returns how many were evicted.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	evicted := 0
	for id, job := range s.jobs {
		job.mu.Lock()
		stale := now.Sub(job.updatedAt) > s.ttl
		job.mu.Unlock()
		if stale {
			delete(s.jobs, id)
			evicted++
		}
	}
	return evicted
}
