// Package health contiene el controller para health checks.
package health

import (
	"net/http"

	dto "github.com/dropDatabas3/dirportal/internal/http/dto/health"
	"github.com/dropDatabas3/dirportal/internal/http/helpers"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"
)

// Binding reporta si hay un identity store bindeado.
type Binding interface {
	Bound() bool
}

// HealthController maneja las rutas de health check.
type HealthController struct {
	binding Binding
	version string
}

func NewHealthController(b Binding, version string) *HealthController {
	return &HealthController{binding: b, version: version}
}

// Healthz maneja GET /healthz: el proceso está vivo.
func (c *HealthController) Healthz(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok", Version: c.version})
}

// Readyz maneja GET /readyz: listo solo con un identity store bindeado.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	resp := dto.HealthResponse{Status: "ready", Version: c.version, Components: map[string]string{"identity_store": "bound"}}
	status := http.StatusOK
	if c.binding == nil || !c.binding.Bound() {
		resp.Status = "unavailable"
		resp.Components["identity_store"] = "unbound"
		status = http.StatusServiceUnavailable
	}
	logger.From(r.Context()).Debug("health check completed",
		logger.Layer("controller"),
		logger.String("status", resp.Status),
	)
	helpers.WriteJSON(w, status, resp)
}
