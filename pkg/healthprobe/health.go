package healthprobe

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Component names reported by the readiness probe.
const (
	ComponentWallet   = "wallet"
	ComponentFullnode = "fullnode"
	ComponentTracker  = "tracker"
)

// HealthChecker provides health and readiness checks with per-component
// readiness tracking.
type HealthChecker struct {
	startTime time.Time

	mu    sync.RWMutex
	ready map[string]bool
}

// New creates a new HealthChecker. Components are not ready until marked.
func New(components ...string) *HealthChecker {
	ready := make(map[string]bool, len(components))
	for _, component := range components {
		ready[component] = false
	}

	return &HealthChecker{
		startTime: time.Now(),
		ready:     ready,
	}
}

// SetReady marks one component's readiness.
func (h *HealthChecker) SetReady(component string, ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ready[component] = ready
}

// allReady reports whether every registered component is ready.
func (h *HealthChecker) allReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ready := range h.ready {
		if !ready {
			return false
		}
	}

	return true
}

// components returns a copy of the readiness map.
func (h *HealthChecker) components() map[string]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	snapshot := make(map[string]bool, len(h.ready))
	for component, ready := range h.ready {
		snapshot[component] = ready
	}

	return snapshot
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status     string          `json:"status"`
	Uptime     string          `json:"uptime"`
	Components map[string]bool `json:"components,omitempty"`
}

// Health returns an HTTP handler for liveness checks.
// Always returns 200 OK if the application is running.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status: "healthy",
			Uptime: time.Since(h.startTime).String(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// Ready returns an HTTP handler for readiness checks.
// Returns 200 OK only when every registered component is ready, 503
// otherwise, with per-component detail either way.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Uptime:     time.Since(h.startTime).String(),
			Components: h.components(),
		}

		w.Header().Set("Content-Type", "application/json")

		if !h.allReady() {
			resp.Status = "not_ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			resp.Status = "ready"
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(resp)
	}
}
