package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/ecotrack/backend/internal/audit"
	"github.com/ecotrack/backend/internal/metrics"
	"github.com/ecotrack/backend/internal/models"
	"github.com/ecotrack/backend/internal/storage"
	"github.com/ecotrack/backend/internal/store"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	leaderboardKey     = "leaderboard:top:"
	leaderboardGenKey  = "leaderboard:gen"
	leaderboardTTL     = 30 * time.Second
	defaultLeaderboard = 10
	pointsTolerance    = 1e-9
)

// SubmitEntryRequest is one activity submission
// @Description Carbon entry submission
type SubmitEntryRequest struct {
	ActivityID    string   `json:"activityId" validate:"required,max=64" example:"renewable-energy"`
	ActivityType  string   `json:"activityType" validate:"required,oneof=carbon-producing carbon-reducing" example:"carbon-reducing"`
	ActivityValue float64  `json:"activityValue" example:"30"`
	Points        *float64 `json:"points,omitempty" example:"15"`
}

// EntryResult is the stored entry plus the owner's new total.
type EntryResult struct {
	Entry       models.CarbonEntry
	TotalPoints float64
}

// LedgerService records carbon entries and serves the point projections.
type LedgerService struct {
	store    store.Store
	blobs    storage.BlobStore
	redis    *redis.Client
	metrics  *metrics.Metrics
	audit    *audit.Logger
	log      *zap.SugaredLogger
	validate *ValidationHelper
	loc      *time.Location
	now      func() time.Time
}

func NewLedgerService(
	st store.Store,
	blobs storage.BlobStore,
	redisClient *redis.Client,
	m *metrics.Metrics,
	auditLog *audit.Logger,
	log *zap.SugaredLogger,
	loc *time.Location,
) *LedgerService {
	if loc == nil {
		loc = time.Local
	}
	return &LedgerService{
		store:    st,
		blobs:    blobs,
		redis:    redisClient,
		metrics:  m,
		audit:    auditLog,
		log:      log.Named("ledger"),
		validate: NewValidationHelper(),
		loc:      loc,
		now:      time.Now,
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// resolvePoints decides the points of a submission. Catalog activities are
// priced server side; custom activities keep the client figure.
func (s *LedgerService) resolvePoints(req SubmitEntryRequest, hasPhoto bool) (float64, error) {
	if !finite(req.ActivityValue) || req.ActivityValue <= 0 {
		return 0, Validation("activityValue must be a positive number", nil)
	}
	if req.Points != nil && !finite(*req.Points) {
		return 0, Validation("points must be a finite number", nil)
	}

	activity, ok := LookupActivity(req.ActivityID)
	if !ok {
		if req.Points == nil {
			return 0, Validation("points are required for custom activities", nil)
		}
		p := *req.Points
		if req.ActivityType == models.CategoryProducing && p > 0 {
			return 0, Validation("carbon-producing activities cannot earn points", nil)
		}
		if req.ActivityType == models.CategoryReducing && p < 0 {
			return 0, Validation("carbon-reducing activities cannot lose points", nil)
		}
		return p, nil
	}

	if req.ActivityType != activity.Category {
		return 0, Validation("activityType does not match activity", nil)
	}
	if req.ActivityValue > activity.MaxValue {
		return 0, Validation("activityValue exceeds the allowed maximum", nil)
	}
	if activity.PhotoRequired && !hasPhoto {
		return 0, Validation("a photo is required for this activity", nil)
	}

	points := activity.Points(req.ActivityValue)
	if req.Points != nil && math.Abs(*req.Points-points) > pointsTolerance {
		s.log.Warnw("client points ignored",
			"activity_id", activity.ID, "client_points", *req.Points, "points", points)
	}
	return points, nil
}

// SubmitEntry stores the entry and credits its points to the owner atomically.
func (s *LedgerService) SubmitEntry(ctx context.Context, userID string, req SubmitEntryRequest, photo *Upload) (*EntryResult, error) {
	if err := s.validate.ValidateStruct(&req); err != nil {
		return nil, Validation("Validation failed", err)
	}

	points, err := s.resolvePoints(req, photo != nil)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entry := models.CarbonEntry{
		ID:            uuid.NewString(),
		UserID:        userID,
		ActivityID:    req.ActivityID,
		ActivityType:  req.ActivityType,
		Title:         ActivityTitle(req.ActivityID),
		ActivityValue: req.ActivityValue,
		Points:        points,
		CreatedAt:     now.UTC(),
	}

	var saved *savedUpload
	if photo != nil {
		saved, err = saveUpload(ctx, s.blobs, "activity", photo, now)
		if err != nil {
			return nil, Internal("failed to store photo", err)
		}
		entry.PhotoURL = saved.URL
	}

	total, err := s.store.CreateEntry(ctx, &entry)
	if err != nil {
		discardUpload(ctx, s.blobs, saved, s.log)
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFound("User not found")
		}
		s.audit.LogError(userID, "CARBON_ENTRY", err)
		return nil, Internal("failed to record entry", err)
	}

	s.invalidateLeaderboard(ctx)
	if s.metrics != nil {
		s.metrics.EntriesRecorded.WithLabelValues(entry.ActivityType).Inc()
		if points > 0 {
			s.metrics.PointsAwarded.Add(points)
		}
	}
	s.audit.LogEntry(userID, entry.ID, entry.ActivityID, points, total)

	return &EntryResult{Entry: entry, TotalPoints: total}, nil
}

// ListEntriesForUser returns the user's entries inside window, newest first.
func (s *LedgerService) ListEntriesForUser(ctx context.Context, userID, window string) ([]models.CarbonEntry, error) {
	since := WindowStart(window, s.now(), s.loc)
	entries, err := s.store.ListEntries(ctx, userID, since)
	if err != nil {
		return nil, Internal("failed to load entries", err)
	}
	return entries, nil
}

// ListTopContributors ranks users with a positive total. limit is clamped to
// [1, 10]; the default page is cached briefly in Redis.
func (s *LedgerService) ListTopContributors(ctx context.Context, limit int) ([]models.Contributor, error) {
	if limit <= 0 || limit > defaultLeaderboard {
		limit = defaultLeaderboard
	}
	cacheable := limit == defaultLeaderboard && s.redis != nil

	// the generation is read before the store so a board loaded ahead of a
	// submission lands under a key that submission already retired
	var key string
	if cacheable {
		key = leaderboardKey + s.leaderboardGeneration(ctx)
		if cached, ok := s.cachedLeaderboard(ctx, key); ok {
			return cached, nil
		}
	}

	top, err := s.store.TopContributors(ctx, limit)
	if err != nil {
		return nil, Internal("failed to load contributors", err)
	}

	if cacheable {
		if data, err := json.Marshal(top); err == nil {
			if err := s.redis.Set(ctx, key, string(data), leaderboardTTL).Err(); err != nil {
				s.log.Warnw("leaderboard cache write failed", "error", err)
			}
		}
	}
	return top, nil
}

func (s *LedgerService) leaderboardGeneration(ctx context.Context) string {
	gen, err := s.redis.Get(ctx, leaderboardGenKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warnw("leaderboard generation read failed", "error", err)
		}
		return "0"
	}
	return gen
}

func (s *LedgerService) cachedLeaderboard(ctx context.Context, key string) ([]models.Contributor, bool) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warnw("leaderboard cache read failed", "error", err)
		}
		return nil, false
	}
	var top []models.Contributor
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, false
	}
	return top, true
}

// invalidateLeaderboard retires the current generation. Boards cached under
// older generations expire on their own.
func (s *LedgerService) invalidateLeaderboard(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Incr(ctx, leaderboardGenKey).Err(); err != nil {
		s.log.Warnw("leaderboard cache invalidation failed", "error", err)
	}
}
