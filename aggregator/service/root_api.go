package service

import (
	"encoding/json"
	"net/http"
)

func (api *APIServer) RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{"message": "telemetry API is live!"}); err != nil {
		api.logger.Error("Error writing root response", "error", err)
	}
}

func (api *APIServer) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		api.logger.Error("Error writing health check response", "error", err)
	}
}
