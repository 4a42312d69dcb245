package services

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/ecotrack/backend/internal/models"
	"github.com/ecotrack/backend/internal/store"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	defaultAgeMin    = 0
	defaultAgeMax    = 100
)

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users      []models.User
	Pagination models.Pagination
}

type AdminService struct {
	store store.Store
	log   *zap.SugaredLogger
}

func NewAdminService(st store.Store, log *zap.SugaredLogger) *AdminService {
	return &AdminService{store: st, log: log.Named("admin")}
}

// ParseUserFilter translates admin listing query parameters.
func ParseUserFilter(q url.Values) (models.UserFilter, models.Page) {
	f := models.UserFilter{
		Search:  strings.TrimSpace(q.Get("search")),
		Country: strings.TrimSpace(q.Get("country")),
		Gender:  strings.TrimSpace(q.Get("gender")),
	}

	if ageRange := strings.TrimSpace(q.Get("ageRange")); ageRange != "" {
		lo, hi := parseAgeRange(ageRange)
		f.AgeMin, f.AgeMax = &lo, &hi
	}

	if _, _, ok := models.PointsBounds(q.Get("pointsRange")); ok {
		f.PointsBucket = q.Get("pointsRange")
	}

	page := models.Page{Page: 1, Limit: defaultPageLimit}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 1 {
		page.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		page.Limit = min(l, maxPageLimit)
	}
	return f, page
}

// parseAgeRange reads "min-max". A missing, unparsable or zero bound falls
// back to 0 for the minimum and 100 for the maximum.
func parseAgeRange(s string) (int, int) {
	lo, hi := defaultAgeMin, defaultAgeMax
	minStr, maxStr, _ := strings.Cut(s, "-")
	if v, err := strconv.Atoi(strings.TrimSpace(minStr)); err == nil && v > 0 {
		lo = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(maxStr)); err == nil && v > 0 {
		hi = v
	}
	return lo, hi
}

func (s *AdminService) ListUsers(ctx context.Context, f models.UserFilter, page models.Page) (*UserPage, error) {
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit < 1 {
		page.Limit = defaultPageLimit
	}

	s.log.Debugw("listing users", "page", page.Page, "limit", page.Limit, "points", f.PointsBucket)
	users, total, err := s.store.ListUsers(ctx, f, page)
	if err != nil {
		return nil, Internal("failed to list users", err)
	}

	return &UserPage{
		Users: users,
		Pagination: models.Pagination{
			Total:      total,
			Page:       page.Page,
			Limit:      page.Limit,
			TotalPages: (total + page.Limit - 1) / page.Limit,
		},
	}, nil
}

func (s *AdminService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, Internal("failed to count users", err)
	}
	entries, err := s.store.CountEntries(ctx)
	if err != nil {
		return nil, Internal("failed to count entries", err)
	}
	trees, err := s.store.SumActivityValue(ctx, ActivityTreePlanting)
	if err != nil {
		return nil, Internal("failed to sum trees planted", err)
	}
	return &models.DashboardStats{TotalUsers: users, TotalEntries: entries, TreesPlanted: trees}, nil
}
