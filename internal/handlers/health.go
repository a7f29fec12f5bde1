package handlers

import (
	"net/http"

	"boardroom-backend/pkg/api"
)

// Health returns a handler for GET /health reporting the store driver.
func Health(storeDriver string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, api.HealthResponse{Status: "ok", Store: storeDriver})
	}
}
