package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ecotrack/backend/internal/models"
	"github.com/ecotrack/backend/internal/services"
	"go.uber.org/zap"
)

// Response is the success envelope
// @Description Success response structure
type Response struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Token      string             `json:"token,omitempty"`
	Count      *int               `json:"count,omitempty"`
	Data       any                `json:"data,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	resp.Success = true
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// writeError maps a service error onto the error envelope. notFound is the
// status used for KindNotFound, which differs between the auth routes and
// the rest of the API.
func writeError(w http.ResponseWriter, log *zap.SugaredLogger, err error, notFound int) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		svcErr = services.Internal("unexpected error", err)
	}

	var status int
	switch svcErr.Kind {
	case services.KindValidation, services.KindConflict, services.KindInvalidOrExpired:
		status = http.StatusBadRequest
	case services.KindNotFound:
		status = notFound
	case services.KindUnauthorized:
		status = http.StatusUnauthorized
	case services.KindForbidden:
		status = http.StatusForbidden
	case services.KindRateLimited:
		status = http.StatusTooManyRequests
	default:
		log.Errorw("request failed", "error", err)
		services.SendErrorResponse(w, "Server Error", http.StatusInternalServerError, nil)
		return
	}

	services.SendErrorResponse(w, svcErr.Message, status, svcErr.Err)
}

func countOf(n int) *int { return &n }

// entryResponse is a stored entry plus the owner's new point total.
type entryResponse struct {
	models.CarbonEntry
	TotalPoints float64 `json:"totalPoints"`
}
