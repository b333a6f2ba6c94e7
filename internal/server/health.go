package server

import (
	"sync"
	"time"
)

// Health tracks the outcome of the most recent status query
type Health struct {
	mu          sync.RWMutex
	staleAfter  time.Duration
	lastSuccess time.Time
	lastError   string
	lastAttempt time.Time
}

// NewHealth creates a health tracker. The service turns unhealthy when no
// query has succeeded within staleAfter.
func NewHealth(staleAfter time.Duration) *Health {
	return &Health{staleAfter: staleAfter}
}

// Record stores the outcome of a query made at the given time
func (h *Health) Record(at time.Time, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastAttempt = at
	if err != nil {
		h.lastError = err.Error()
		return
	}
	h.lastSuccess = at
	h.lastError = ""
}

// healthResponse is the /health body
type healthResponse struct {
	Status      string     `json:"status"`
	Service     string     `json:"service"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// Snapshot reports whether the service is healthy at now
func (h *Health) Snapshot(now time.Time) (bool, healthResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	resp := healthResponse{Service: "leontp-stats", LastError: h.lastError}
	if !h.lastSuccess.IsZero() {
		ls := h.lastSuccess
		resp.LastSuccess = &ls
	}

	switch {
	case h.lastAttempt.IsZero():
		resp.Status = "starting"
		return false, resp
	case h.lastSuccess.IsZero(), h.staleAfter > 0 && now.Sub(h.lastSuccess) > h.staleAfter:
		resp.Status = "unhealthy"
		return false, resp
	default:
		resp.Status = "healthy"
		return true, resp
	}
}
