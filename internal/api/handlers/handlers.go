package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/jobs"
)

// InsightsRunner runs one synchronous insights pass for a user.
type InsightsRunner interface {
	GenerateInsights(ctx context.Context, userID string) (*domain.DecisionTrace, error)
}

// TraceReader reads persisted run outputs.
type TraceReader interface {
	GetTrace(ctx context.Context, traceID string) (*domain.DecisionTrace, error)
	ListTracesByUser(ctx context.Context, userID string, limit int) ([]*domain.DecisionTrace, error)
	ListAssignmentsByUser(ctx context.Context, userID string, limit int) ([]domain.PersonaAssignment, error)
}

// InsightsHandler handles insight-run and trace endpoints.
type InsightsHandler struct {
	runner    InsightsRunner
	reader    TraceReader
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(runner InsightsRunner, reader TraceReader, publisher jobs.Publisher, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{
		runner:    runner,
		reader:    reader,
		publisher: publisher,
		log:       log,
	}
}

// RunInsights handles POST /api/insights/run
// It executes a full insights run synchronously and returns the trace.
func (h *InsightsHandler) RunInsights(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	ctx := r.Context()

	trace, err := h.runner.GenerateInsights(ctx, req.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Insights run failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Insights run failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, trace)
}

// EnqueueInsights handles POST /api/insights
// It enqueues an asynchronous insights run and returns the job ID.
func (h *InsightsHandler) EnqueueInsights(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	ctx := r.Context()

	job := &jobs.GenerateInsightsJob{
		UserID: req.UserID,
	}

	if err := h.publisher.PublishGenerateInsights(ctx, job); err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to enqueue insights job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue insights job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("user_id", req.UserID).Msg("Insights job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"user_id": req.UserID,
		"status":  string(job.Status),
	})
}

// GetTrace handles GET /api/traces/{id}
func (h *InsightsHandler) GetTrace(w http.ResponseWriter, r *http.Request, traceID string) {
	ctx := r.Context()

	trace, err := h.reader.GetTrace(ctx, traceID)
	if err != nil {
		h.log.Error().Err(err).Str("trace_id", traceID).Msg("Failed to get trace")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get trace")
		return
	}
	if trace == nil {
		middleware.WriteError(w, http.StatusNotFound, "Trace not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, trace)
}

// ListTraces handles GET /api/users/{id}/traces
func (h *InsightsHandler) ListTraces(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	traces, err := h.reader.ListTracesByUser(ctx, userID, parseLimit(r))
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list traces")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list traces")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"traces": traces,
		"count":  len(traces),
	})
}

// ListPersonaHistory handles GET /api/users/{id}/personas
func (h *InsightsHandler) ListPersonaHistory(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	assignments, err := h.reader.ListAssignmentsByUser(ctx, userID, parseLimit(r))
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list persona history")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list persona history")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"assignments": assignments,
		"count":       len(assignments),
	})
}

func parseLimit(r *http.Request) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			return limit
		}
	}
	return 0
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		UserID: query.Get("user_id"),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
