package handlers

import (
	"net/http"

	"github.com/kdd-community/website-backend/internal/models"
)

// statusFor maps a service Result onto an HTTP status code
func statusFor(result models.Result) int {
	if result.Success {
		return http.StatusOK
	}
	switch result.Message {
	case "Unauthorized":
		return http.StatusUnauthorized
	case "Event not found":
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}
