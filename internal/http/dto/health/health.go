// Package health contiene los DTOs de health checks.
package health

// HealthResponse respuesta de /healthz y /readyz.
type HealthResponse struct {
	Status     string            `json:"status"` // "ok" | "ready" | "unavailable"
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components,omitempty"`
}
