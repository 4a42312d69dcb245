package handlers

import (
	"net/http"
	"strconv"

	"github.com/ecotrack/backend/internal/middleware"
	"github.com/ecotrack/backend/internal/services"
	"go.uber.org/zap"
)

type UserHandler struct {
	accounts *services.AccountService
	ledger   *services.LedgerService
	log      *zap.SugaredLogger
}

func NewUserHandler(accounts *services.AccountService, ledger *services.LedgerService, log *zap.SugaredLogger) *UserHandler {
	return &UserHandler{accounts: accounts, ledger: ledger, log: log.Named("http.users")}
}

func (h *UserHandler) fail(w http.ResponseWriter, err error) {
	writeError(w, h.log, err, http.StatusNotFound)
}

// Me returns the caller's profile
// @Summary Get profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.Profile}
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r.Context())
	if !ok {
		h.fail(w, services.Unauthorized("Not authorized"))
		return
	}

	profile, err := h.accounts.GetProfile(r.Context(), session.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: profile})
}

// UpdateProfile overwrites the provided profile fields
// @Summary Update profile
// @Description Fields that are not sent stay unchanged. Accepts JSON or multipart/form-data with an optional profileImage file.
// @Tags Users
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body services.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} Response{data=models.Profile}
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r.Context())
	if !ok {
		h.fail(w, services.Unauthorized("Not authorized"))
		return
	}

	var req services.UpdateProfileRequest
	var image *services.Upload

	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			h.fail(w, err)
			return
		}
		age, err := formInt(r, "age")
		if err != nil {
			h.fail(w, err)
			return
		}
		req = services.UpdateProfileRequest{
			Name:    formString(r, "name"),
			Email:   formString(r, "email"),
			Country: formString(r, "country"),
			Bio:     formString(r, "bio"),
			Gender:  formString(r, "gender"),
			Age:     age,
		}
		if image, err = formImage(r, "profileImage"); err != nil {
			h.fail(w, err)
			return
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	profile, err := h.accounts.UpdateProfile(r.Context(), session.UserID, req, image)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "Profile updated successfully", Data: profile})
}

// TopContributors returns the leaderboard
// @Summary Top contributors
// @Description Users with a positive point total, highest first. timeFrame is accepted for compatibility; the ranking is all-time.
// @Tags Users
// @Produce json
// @Param timeFrame query string false "day, week, month, year or all"
// @Param limit query int false "at most 10"
// @Success 200 {object} Response{data=[]models.Contributor}
// @Failure 500 {object} services.ErrorResponse
// @Router /users/top-contributors [get]
func (h *UserHandler) TopContributors(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	top, err := h.ledger.ListTopContributors(r.Context(), limit)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Count: countOf(len(top)), Data: top})
}
