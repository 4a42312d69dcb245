package handlers

import (
	"net/http"

	"github.com/ecotrack/backend/internal/middleware"
	"github.com/ecotrack/backend/internal/services"
	"go.uber.org/zap"
)

type EntryHandler struct {
	ledger *services.LedgerService
	log    *zap.SugaredLogger
}

func NewEntryHandler(ledger *services.LedgerService, log *zap.SugaredLogger) *EntryHandler {
	return &EntryHandler{ledger: ledger, log: log.Named("http.entries")}
}

func (h *EntryHandler) fail(w http.ResponseWriter, err error) {
	writeError(w, h.log, err, http.StatusNotFound)
}

// Create records a carbon entry
// @Summary Submit carbon entry
// @Description Points of catalog activities are computed by the server. Accepts JSON or multipart/form-data with an optional photo file (required for tree-planting).
// @Tags Carbon Entries
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body services.SubmitEntryRequest true "Entry details"
// @Success 201 {object} Response{data=models.CarbonEntry}
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /carbon-entries [post]
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r.Context())
	if !ok {
		h.fail(w, services.Unauthorized("Not authorized"))
		return
	}

	var req services.SubmitEntryRequest
	var photo *services.Upload

	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			h.fail(w, err)
			return
		}
		value, err := formFloat(r, "activityValue")
		if err != nil {
			h.fail(w, err)
			return
		}
		if value == nil {
			h.fail(w, services.Validation("activityValue is required", nil))
			return
		}
		points, err := formFloat(r, "points")
		if err != nil {
			h.fail(w, err)
			return
		}
		req = services.SubmitEntryRequest{
			ActivityID:    formValue(r, "activityId"),
			ActivityType:  formValue(r, "activityType"),
			ActivityValue: *value,
			Points:        points,
		}
		if photo, err = formImage(r, "photo"); err != nil {
			h.fail(w, err)
			return
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	res, err := h.ledger.SubmitEntry(r.Context(), session.UserID, req, photo)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Message: "Carbon entry added successfully",
		Data: entryResponse{
			CarbonEntry: res.Entry,
			TotalPoints: res.TotalPoints,
		},
	})
}

// ListMine returns the caller's entries
// @Summary List my carbon entries
// @Tags Carbon Entries
// @Produce json
// @Security BearerAuth
// @Param timeFrame query string false "day, week, month, year or all"
// @Success 200 {object} Response{data=[]models.CarbonEntry}
// @Failure 401 {object} services.ErrorResponse
// @Router /carbon-entries/user [get]
func (h *EntryHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r.Context())
	if !ok {
		h.fail(w, services.Unauthorized("Not authorized"))
		return
	}

	entries, err := h.ledger.ListEntriesForUser(r.Context(), session.UserID, r.URL.Query().Get("timeFrame"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Count: countOf(len(entries)), Data: entries})
}
