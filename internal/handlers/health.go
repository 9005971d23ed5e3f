package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

var startTime = time.Now()

// ReadinessCheck reports whether a dependency is ready to serve traffic.
type ReadinessCheck func() error

// HealthHandlers serves the liveness and readiness probes.
type HealthHandlers struct {
	checks map[string]ReadinessCheck
}

// NewHealthHandlers constructs the probe handlers. Named readiness checks are
// optional.
func NewHealthHandlers() *HealthHandlers {
	return &HealthHandlers{checks: make(map[string]ReadinessCheck)}
}

// AddReadinessCheck registers a named dependency check for /readyz.
func (h *HealthHandlers) AddReadinessCheck(name string, check ReadinessCheck) {
	if name == "" || check == nil {
		return
	}
	h.checks[name] = check
}

// Healthz responds with a simple status payload for liveness monitoring.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz runs the registered dependency checks and reports the aggregate.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	payload := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if status != http.StatusOK {
		payload["status"] = "unavailable"
	}
	if len(results) > 0 {
		payload["checks"] = results
	}
	writeProbe(w, status, payload)
}

func writeProbe(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
