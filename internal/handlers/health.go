package handlers

import (
	"encoding/json"
	"net/http"

	"vod-egress/internal/startup"
)

// HealthCheck reports process liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// GetVersion reports build information.
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"version": startup.Version,
		"commit":  startup.Commit,
		"build":   startup.BuildString(),
	})
}
