package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dvloznov/spendwise/internal/jobs"
)

// JobStore is an in-memory implementation of jobs.JobStore.
// Job state is lost on restart, which is acceptable for exports
// since clients can simply request a new one.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.ExportJob
}

// NewJobStore creates a new in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]*jobs.ExportJob),
	}
}

// SaveJob saves or updates a job's state.
func (s *JobStore) SaveJob(_ context.Context, job *jobs.ExportJob) error {
	if job == nil {
		return fmt.Errorf("SaveJob: job is nil")
	}
	if job.JobID == "" {
		return fmt.Errorf("SaveJob: job ID is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *job
	s.jobs[job.JobID] = &cp
	return nil
}

// GetJob retrieves a job by ID.
func (s *JobStore) GetJob(_ context.Context, jobID string) (*jobs.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("GetJob: job %s not found", jobID)
	}

	cp := *job
	return &cp, nil
}

// ListJobs retrieves jobs matching the filter, newest first.
func (s *JobStore) ListJobs(_ context.Context, filter jobs.JobFilter) ([]*jobs.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*jobs.ExportJob
	for _, job := range s.jobs {
		if filter.UserID != "" && job.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		cp := *job
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}
