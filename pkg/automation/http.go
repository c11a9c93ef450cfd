package automation

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/kr8tiv/platform-core/pkg/app/errors"
	apphttp "github.com/kr8tiv/platform-core/pkg/app/http"
	"github.com/kr8tiv/platform-core/pkg/jobdb"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultJobListLimit = 50

// JobReader is the read side of the job store used by the HTTP layer.
type JobReader interface {
	ListJobsByToken(ctx context.Context, mint string, limit int) ([]*jobdb.AutomationJob, error)
	ListRecentJobs(ctx context.Context, limit int) ([]*jobdb.AutomationJob, error)
}

// HTTP wraps the Orchestrator to provide HTTP endpoints
type HTTP struct {
	orchestrator *Orchestrator
	jobs         JobReader
	logger       *zap.Logger
}

// RegisterRoutes registers HTTP endpoints for fee automation on the given chi router
func RegisterRoutes(r chi.Router, orchestrator *Orchestrator, jobs JobReader, logger *zap.Logger) {
	h := &HTTP{
		orchestrator: orchestrator,
		jobs:         jobs,
		logger:       logger,
	}

	r.Route("/automation", func(r chi.Router) {
		r.Post("/tokens/{mint}/trigger", apphttp.HandleError(h.trigger))
		r.Get("/tokens/{mint}/jobs", apphttp.HandleError(h.tokenJobs))
		r.Get("/jobs", apphttp.HandleError(h.recentJobs))
	})
}

type triggerRequest struct {
	JobType jobdb.JobType `json:"job_type"`
}

func (h *HTTP) trigger(w http.ResponseWriter, r *http.Request) error {
	mint := chi.URLParam(r, "mint")
	if mint == "" {
		return apperrors.BadRequestError(nil, "mint is required")
	}

	req := triggerRequest{JobType: jobdb.JobTypeFullCycle}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return apperrors.BadRequestError(err, "invalid JSON")
		}
	}

	job, err := h.orchestrator.TriggerAutomation(r.Context(), mint, req.JobType)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusAccepted, job)
	return nil
}

func (h *HTTP) tokenJobs(w http.ResponseWriter, r *http.Request) error {
	mint := chi.URLParam(r, "mint")
	if mint == "" {
		return apperrors.BadRequestError(nil, "mint is required")
	}

	jobs, err := h.jobs.ListJobsByToken(r.Context(), mint, listLimit(r))
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, jobs)
	return nil
}

func (h *HTTP) recentJobs(w http.ResponseWriter, r *http.Request) error {
	jobs, err := h.jobs.ListRecentJobs(r.Context(), listLimit(r))
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, jobs)
	return nil
}

func listLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			return n
		}
	}
	return defaultJobListLimit
}

func (h *HTTP) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
