package service

import (
	"fmt"
	"net/http"
)

// telemetryJSONHandler handles the /telemetry.json endpoint
func (api *APIServer) telemetryJSONHandler(w http.ResponseWriter, r *http.Request) {
	data, err := api.dataset.JSON()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error generating telemetry: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		api.logger.Error("Error writing telemetry response", "error", err)
	}
}

// telemetryCSVHandler handles the /telemetry.csv endpoint
func (api *APIServer) telemetryCSVHandler(w http.ResponseWriter, r *http.Request) {
	data, err := api.dataset.CSV()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error generating telemetry: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		api.logger.Error("Error writing telemetry response", "error", err)
	}
}
