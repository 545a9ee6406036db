package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const pingTimeout = 2 * time.Second

// Pinger checks connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController pings every registered dependency on each request and
// reports 503 when any of them fails.
type HealthController struct {
	names   []string
	pingers map[string]Pinger
	version string
}

func NewHealthController(version string) *HealthController {
	return &HealthController{
		pingers: make(map[string]Pinger),
		version: version,
	}
}

// AddCheck registers a dependency under name. Checks run in registration order.
func (h *HealthController) AddCheck(name string, p Pinger) *HealthController {
	if _, exists := h.pingers[name]; !exists {
		h.names = append(h.names, name)
	}
	h.pingers[name] = p
	return h
}

func (h *HealthController) Status(c *gin.Context) {
	healthy := true
	checks := make(map[string]string, len(h.names))

	for _, name := range h.names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		err := h.pingers[name].Ping(ctx)
		cancel()

		if err != nil {
			checks[name] = "error: " + err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.IndentedJSON(code, HealthResponse{
		Status:  status,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	})
}
