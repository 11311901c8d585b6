package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/spendwise/internal/api/middleware"
	"github.com/dvloznov/spendwise/internal/jobs"
)

// JobsHandler handles the export job endpoints.
type JobsHandler struct {
	publisher jobs.Publisher
	jobStore  jobs.JobStore
	log       zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(publisher jobs.Publisher, jobStore jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		publisher: publisher,
		jobStore:  jobStore,
		log:       log,
	}
}

// CreateExport handles POST /api/export
func (h *JobsHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	job := &jobs.ExportJob{
		JobID:      uuid.NewString(),
		UserID:     userID,
		Status:     jobs.JobStatusPending,
		CreatedAt:  time.Now().UTC(),
		MaxRetries: 3,
	}

	if err := h.publisher.PublishExport(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue export job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue export")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"message": "Export job queued",
		"job":     job,
	})
}

// ListJobs handles GET /api/jobs
// Only the caller's jobs are visible.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	filter := jobs.JobFilter{UserID: userID}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = jobs.JobStatus(status)
	}

	list, err := h.jobStore.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	if list == nil {
		list = []*jobs.ExportJob{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"jobs":    list,
		"count":   len(list),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	userID := middleware.UserID(r.Context())

	job, err := h.jobStore.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if job.UserID != userID {
		middleware.WriteError(w, http.StatusForbidden, "Forbidden")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"job":     job,
	})
}
