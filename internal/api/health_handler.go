package api

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

const readyTimeout = 5 * time.Second

// Pinger checks one backing service.
type Pinger func(ctx context.Context) error

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	checks    map[string]Pinger
	startTime time.Time
	version   string
}

// NewHealthHandler builds a handler that probes every named check on /health/ready.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "unknown"
	}
	return &HealthHandler{checks: checks, startTime: time.Now(), version: version}
}

// HealthResponse follows Kubernetes health check conventions
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Version   string           `json:"version,omitempty"`
	Checks    map[string]Check `json:"checks"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health confirms the process is running.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    map[string]Check{"process": {Status: "UP"}},
	})
}

// Ready pings every dependency; any failure makes the service unready.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	resp := HealthResponse{Status: "UP", Checks: make(map[string]Check, len(h.checks))}
	code := http.StatusOK
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			resp.Checks[name] = Check{Status: "DOWN", Message: "Cannot connect to " + name}
			resp.Status = "DOWN"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = Check{Status: "UP"}
	}
	c.JSON(code, resp)
}
