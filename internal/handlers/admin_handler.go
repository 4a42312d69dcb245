package handlers

import (
	"net/http"

	"github.com/ecotrack/backend/internal/services"
	"go.uber.org/zap"
)

type AdminHandler struct {
	admin *services.AdminService
	log   *zap.SugaredLogger
}

func NewAdminHandler(admin *services.AdminService, log *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{admin: admin, log: log.Named("http.admin")}
}

// ListUsers returns a filtered page of users
// @Summary List users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "substring of name or email"
// @Param country query string false "exact country"
// @Param gender query string false "Male, Female or Other"
// @Param ageRange query string false "min-max, e.g. 18-30"
// @Param pointsRange query string false "high, medium, low or negative"
// @Param page query int false "page number" default(1)
// @Param limit query int false "page size" default(10)
// @Success 200 {object} Response{data=[]models.User,pagination=models.Pagination}
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter, page := services.ParseUserFilter(r.URL.Query())

	res, err := h.admin.ListUsers(r.Context(), filter, page)
	if err != nil {
		writeError(w, h.log, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: res.Users, Pagination: &res.Pagination})
}

// Dashboard returns aggregate statistics
// @Summary Dashboard statistics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.DashboardStats}
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.DashboardStats(r.Context())
	if err != nil {
		writeError(w, h.log, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: stats})
}
