package handlers

import (
	"net/http"

	"github.com/ecotrack/backend/internal/middleware"
	"github.com/ecotrack/backend/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	accounts *services.AccountService
	log      *zap.SugaredLogger
}

func NewAuthHandler(accounts *services.AccountService, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{accounts: accounts, log: log.Named("http.auth")}
}

func (h *AuthHandler) fail(w http.ResponseWriter, err error) {
	writeError(w, h.log, err, http.StatusBadRequest)
}

// Register creates an account
// @Summary Register user
// @Description Create an account and send the first one-time code to the mobile number. Accepts JSON or multipart/form-data with an optional profileImage file.
// @Tags Auth
// @Accept json,mpfd
// @Produce json
// @Param request body services.RegisterRequest true "Registration details"
// @Success 201 {object} Response{data=models.Profile}
// @Failure 400 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	var image *services.Upload

	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			h.fail(w, err)
			return
		}
		req = services.RegisterRequest{
			Name:    formValue(r, "name"),
			Email:   formValue(r, "email"),
			Mobile:  formValue(r, "mobile"),
			Country: formValue(r, "country"),
			Bio:     formValue(r, "bio"),
		}
		var err error
		if image, err = formImage(r, "profileImage"); err != nil {
			h.fail(w, err)
			return
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	res, err := h.accounts.Register(r.Context(), req, image)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Message: "User registered successfully",
		Token:   res.Session.Token,
		Data:    res.User,
	})
}

// Login sends a fresh one-time code
// @Summary Request login code
// @Description Issue a new one-time code for a registered mobile number
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Mobile number"
// @Success 200 {object} Response
// @Failure 400 {object} services.ErrorResponse
// @Failure 429 {object} services.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	if err := h.accounts.RequestCode(r.Context(), req); err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "OTP sent to your mobile number"})
}

// Verify exchanges a code for a session token
// @Summary Verify login code
// @Description Check the one-time code and return a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body services.VerifyRequest true "Mobile number and code"
// @Success 200 {object} Response{data=models.Profile}
// @Failure 400 {object} services.ErrorResponse
// @Router /auth/verify [post]
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req services.VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	res, err := h.accounts.VerifyCode(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Message: "OTP verified successfully",
		Token:   res.Session.Token,
		Data:    res.User,
	})
}

// Me returns the authenticated user
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.Profile}
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
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

// Logout revokes the presented token
// @Summary Logout
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r.Context())
	if !ok {
		h.fail(w, services.Unauthorized("Not authorized"))
		return
	}

	if err := h.accounts.Logout(r.Context(), session); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Message: "Logged out successfully"})
}
