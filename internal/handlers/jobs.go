package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mdco-storefront/api/internal/jobs"
	"github.com/mdco-storefront/api/internal/platform/httpx"
	"github.com/mdco-storefront/api/internal/platform/requestctx"
)

// JobHandlers triggers the registered batch jobs over HTTP. Jobs run in the
// background; the request only confirms the launch.
type JobHandlers struct {
	registry *jobs.Registry
	limiter  rateLimiter
	launch   func(fn func())
}

// JobOption customises the job handlers.
type JobOption func(*JobHandlers)

// WithJobRateLimit throttles launches per job name.
func WithJobRateLimit(limit int, window time.Duration) JobOption {
	return func(h *JobHandlers) {
		h.limiter = newSimpleRateLimiter(limit, window, nil)
	}
}

// NewJobHandlers constructs a new JobHandlers instance.
func NewJobHandlers(registry *jobs.Registry, opts ...JobOption) *JobHandlers {
	h := &JobHandlers{
		registry: registry,
		launch:   func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers the /job endpoints.
func (h *JobHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listJobs)
	r.Post("/{name}", h.runJob)
}

func (h *JobHandlers) listJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.registry == nil {
		httpx.WriteError(ctx, w, httpx.NewError("job_registry_unavailable", "job registry unavailable", http.StatusServiceUnavailable))
		return
	}
	httpx.WriteData(ctx, w, map[string]any{"jobs": h.registry.Names()})
}

func (h *JobHandlers) runJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.registry == nil {
		httpx.WriteError(ctx, w, httpx.NewError("job_registry_unavailable", "job registry unavailable", http.StatusServiceUnavailable))
		return
	}

	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if !h.registry.Has(name) {
		httpx.WriteError(ctx, w, httpx.NewError("job_not_found", "no job registered under that name", http.StatusNotFound))
		return
	}

	if h.limiter != nil && !h.limiter.Allow(name) {
		httpx.WriteError(ctx, w, httpx.NewError("job_rate_limited", "job was launched recently, try again later", http.StatusTooManyRequests))
		return
	}

	// The job outlives the request; keep the logger, drop the deadline.
	jobCtx := context.WithoutCancel(ctx)
	logger := requestctx.Logger(ctx)
	h.launch(func() {
		if err := h.registry.Run(jobCtx, name); err != nil {
			logger.Error("job failed", zap.String("job", name), zap.Error(err))
			return
		}
		logger.Info("job finished", zap.String("job", name))
	})

	httpx.WriteJSON(ctx, w, http.StatusAccepted, httpx.Envelope{
		Data:    map[string]any{"job": name},
		Message: "accepted",
		Status:  http.StatusAccepted,
	})
}
