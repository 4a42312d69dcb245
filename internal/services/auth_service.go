package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ecotrack/backend/internal/audit"
	"github.com/ecotrack/backend/internal/metrics"
	"github.com/ecotrack/backend/internal/models"
	"github.com/ecotrack/backend/internal/notify"
	"github.com/ecotrack/backend/internal/storage"
	"github.com/ecotrack/backend/internal/store"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	otpRateLimitPrefix = "otp:ratelimit:"
	otpAttemptsPrefix  = "otp:attempts:"
)

// RegisterRequest represents the registration payload
// @Description Registration request structure
type RegisterRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100" example:"Asha Rao"`
	Email   string `json:"email" validate:"required,email" example:"asha@example.com"`
	Mobile  string `json:"mobile" validate:"required,mobile" example:"5551234567"`
	Country string `json:"country" validate:"required,max=100" example:"India"`
	Bio     string `json:"bio" validate:"max=500" example:"Cycling to work since 2020"`
}

// LoginRequest asks for a fresh one-time code
// @Description Login request structure
type LoginRequest struct {
	Mobile string `json:"mobile" validate:"required" example:"5551234567"`
}

// VerifyRequest exchanges a one-time code for a session token
// @Description OTP verification request structure
type VerifyRequest struct {
	Mobile string `json:"mobile" validate:"required" example:"5551234567"`
	OTP    string `json:"otp" validate:"required" example:"123456"`
}

// UpdateProfileRequest carries the fields to overwrite. Nil fields are left unchanged.
// @Description Profile update structure
type UpdateProfileRequest struct {
	Name    *string `json:"name" validate:"omitnil,min=2,max=100"`
	Email   *string `json:"email" validate:"omitnil,email"`
	Country *string `json:"country" validate:"omitnil,min=1,max=100"`
	Bio     *string `json:"bio" validate:"omitnil,max=500"`
	// Gender clears the stored value when set to "".
	Gender *string `json:"gender" validate:"omitnil,gender"`
	Age    *int    `json:"age" validate:"omitnil,min=0,max=150"`
}

// AuthResult is returned by Register and VerifyCode.
type AuthResult struct {
	Session *models.Session
	User    models.Profile
}

type AccountOptions struct {
	CodeTTL         time.Duration
	MaxCodeRequests int
	RateWindow      time.Duration
	// MaxVerifyAttempts is the number of wrong codes accepted for one mobile
	// before the outstanding code is burned.
	MaxVerifyAttempts int
}

// AccountService owns identities and the one-time code handshake.
type AccountService struct {
	users    store.Users
	tokens   *TokenManager
	hasher   *CodeHasher
	sender   notify.CodeSender
	blobs    storage.BlobStore
	redis    *redis.Client
	metrics  *metrics.Metrics
	audit    *audit.Logger
	log      *zap.SugaredLogger
	validate *ValidationHelper
	attempts *attemptCounter
	opts     AccountOptions
	now      func() time.Time
}

func NewAccountService(
	users store.Users,
	tokens *TokenManager,
	hasher *CodeHasher,
	sender notify.CodeSender,
	blobs storage.BlobStore,
	redisClient *redis.Client,
	m *metrics.Metrics,
	auditLog *audit.Logger,
	log *zap.SugaredLogger,
	opts AccountOptions,
) *AccountService {
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = 10 * time.Minute
	}
	if opts.MaxCodeRequests <= 0 {
		opts.MaxCodeRequests = 5
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Hour
	}
	if opts.MaxVerifyAttempts <= 0 {
		opts.MaxVerifyAttempts = 5
	}
	return &AccountService{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		sender:   sender,
		blobs:    blobs,
		redis:    redisClient,
		metrics:  m,
		audit:    auditLog,
		log:      log.Named("auth"),
		validate: NewValidationHelper(),
		attempts: newAttemptCounter(),
		opts:     opts,
		now:      time.Now,
	}
}

// Register creates the user, issues the first code and returns a session.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest, image *Upload) (*AuthResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Mobile = strings.TrimSpace(req.Mobile)
	req.Country = strings.TrimSpace(req.Country)
	req.Bio = strings.TrimSpace(req.Bio)

	if err := s.validate.ValidateStruct(&req); err != nil {
		return nil, Validation("Validation failed", err)
	}

	taken, err := s.users.EmailOrMobileTaken(ctx, req.Email, req.Mobile)
	if err != nil {
		return nil, Internal("failed to check identity", err)
	}
	if taken {
		return nil, Conflict("User with this email or mobile already exists")
	}

	code, err := generateOTP()
	if err != nil {
		return nil, Internal("failed to generate code", err)
	}
	now := s.now()
	expires := now.Add(s.opts.CodeTTL)

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Mobile:       req.Mobile,
		Country:      req.Country,
		Bio:          req.Bio,
		OTPHash:      s.hasher.Hash(req.Mobile, code),
		OTPExpiresAt: &expires,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var saved *savedUpload
	if image != nil {
		saved, err = saveUpload(ctx, s.blobs, "user", image, now)
		if err != nil {
			return nil, Internal("failed to store profile image", err)
		}
		user.ProfileImage = saved.URL
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		discardUpload(ctx, s.blobs, saved, s.log)
		if errors.Is(err, store.ErrConflict) {
			return nil, Conflict("User with this email or mobile already exists")
		}
		return nil, Internal("failed to create user", err)
	}

	s.deliverCode(ctx, user.Mobile, code, "register")
	s.audit.LogRegistration(user.ID, user.Mobile)

	session, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, Internal("failed to generate token", err)
	}

	s.log.Infow("user registered", "user_id", user.ID)
	return &AuthResult{Session: session, User: user.Profile()}, nil
}

// RequestCode replaces any outstanding code with a fresh one.
func (s *AccountService) RequestCode(ctx context.Context, req LoginRequest) error {
	req.Mobile = strings.TrimSpace(req.Mobile)
	if err := s.validate.ValidateStruct(&req); err != nil {
		return Validation("Validation failed", err)
	}

	user, err := s.users.FindUserByMobile(ctx, req.Mobile)
	if errors.Is(err, store.ErrNotFound) {
		return NotFound("User not found, please register")
	}
	if err != nil {
		return Internal("failed to load user", err)
	}

	if err := s.checkCodeRate(ctx, user.Mobile); err != nil {
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return Internal("failed to generate code", err)
	}
	expires := s.now().Add(s.opts.CodeTTL)
	if err := s.users.SetOTP(ctx, user.ID, s.hasher.Hash(user.Mobile, code), expires); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFound("User not found, please register")
		}
		return Internal("failed to store code", err)
	}

	s.resetAttempts(ctx, user.Mobile)
	s.deliverCode(ctx, user.Mobile, code, "login")
	return nil
}

// VerifyCode consumes the outstanding code and returns a session.
func (s *AccountService) VerifyCode(ctx context.Context, req VerifyRequest) (*AuthResult, error) {
	req.Mobile = strings.TrimSpace(req.Mobile)
	req.OTP = strings.TrimSpace(req.OTP)
	if err := s.validate.ValidateStruct(&req); err != nil {
		return nil, Validation("Validation failed", err)
	}

	user, err := s.users.FindUserByMobile(ctx, req.Mobile)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound("User not found")
	}
	if err != nil {
		return nil, Internal("failed to load user", err)
	}

	if s.failedAttempts(ctx, user.Mobile) >= s.opts.MaxVerifyAttempts {
		s.recordVerify("locked")
		return nil, RateLimited("Too many failed attempts, please request a new code")
	}

	if !s.codeValid(user, req.OTP) {
		s.recordVerify("rejected")
		s.audit.LogLogin(user.ID, false)
		if s.recordFailedAttempt(ctx, user.Mobile) >= s.opts.MaxVerifyAttempts && user.OTPHash != "" {
			if _, err := s.users.ClearOTP(ctx, user.ID, user.OTPHash); err != nil {
				s.log.Warnw("failed to burn code", "user_id", user.ID, "error", err)
			}
		}
		return nil, InvalidOrExpired("Invalid or expired OTP")
	}

	cleared, err := s.users.ClearOTP(ctx, user.ID, user.OTPHash)
	if err != nil {
		return nil, Internal("failed to clear code", err)
	}
	if !cleared {
		// another verification or a newer code won the race
		s.recordVerify("rejected")
		return nil, InvalidOrExpired("Invalid or expired OTP")
	}

	session, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, Internal("failed to generate token", err)
	}

	s.resetAttempts(ctx, user.Mobile)
	s.recordVerify("success")
	s.audit.LogLogin(user.ID, true)
	return &AuthResult{Session: session, User: user.Profile()}, nil
}

func (s *AccountService) codeValid(user *models.User, code string) bool {
	if user.OTPHash == "" || user.OTPExpiresAt == nil {
		return false
	}
	if !s.now().Before(*user.OTPExpiresAt) {
		return false
	}
	return s.hasher.Matches(user.Mobile, code, user.OTPHash)
}

func (s *AccountService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound("User not found")
	}
	if err != nil {
		return nil, Internal("failed to load user", err)
	}
	p := user.Profile()
	return &p, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest, image *Upload) (*models.Profile, error) {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(req.Name)
	trim(req.Country)
	trim(req.Bio)
	trim(req.Gender)
	if req.Email != nil {
		*req.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	if err := s.validate.ValidateStruct(&req); err != nil {
		return nil, Validation("Validation failed", err)
	}

	upd := models.ProfileUpdate{
		Name:    req.Name,
		Email:   req.Email,
		Country: req.Country,
		Bio:     req.Bio,
		Gender:  req.Gender,
		Age:     req.Age,
	}
	var saved *savedUpload
	if image != nil {
		var err error
		saved, err = saveUpload(ctx, s.blobs, "user", image, s.now())
		if err != nil {
			return nil, Internal("failed to store profile image", err)
		}
		upd.ProfileImage = &saved.URL
	}

	user, err := s.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		discardUpload(ctx, s.blobs, saved, s.log)
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, NotFound("User not found")
	case errors.Is(err, store.ErrConflict):
		return nil, Conflict("Email is already in use")
	case err != nil:
		return nil, Internal("failed to update profile", err)
	}

	p := user.Profile()
	return &p, nil
}

// Logout revokes the presented session.
func (s *AccountService) Logout(ctx context.Context, session *models.Session) error {
	if err := s.tokens.Revoke(ctx, session); err != nil {
		return Internal("failed to revoke session", err)
	}
	s.audit.LogLogout(session.UserID, session.TokenID)
	return nil
}

func (s *AccountService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return false, NotFound("User not found")
	}
	if err != nil {
		return false, Internal("failed to load user", err)
	}
	return user.IsAdmin, nil
}

// checkCodeRate counts code requests per mobile in a fixed window. Without
// Redis no limit is applied.
func (s *AccountService) checkCodeRate(ctx context.Context, mobile string) error {
	if s.redis == nil {
		return nil
	}
	key := otpRateLimitPrefix + mobile
	n, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		s.log.Warnw("code rate limit unavailable", "error", err)
		return nil
	}
	if n == 1 {
		if err := s.redis.Expire(ctx, key, s.opts.RateWindow).Err(); err != nil {
			s.log.Warnw("failed to set rate limit window", "error", err)
		}
	}
	if n > int64(s.opts.MaxCodeRequests) {
		return RateLimited("Too many code requests, please try again later")
	}
	return nil
}

// failedAttempts, recordFailedAttempt and resetAttempts track wrong codes per
// mobile. Redis holds the count when configured so every replica shares it.
func (s *AccountService) failedAttempts(ctx context.Context, mobile string) int {
	if s.redis == nil {
		return s.attempts.count(mobile, s.now())
	}
	n, err := s.redis.Get(ctx, otpAttemptsPrefix+mobile).Int()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warnw("attempt counter unavailable", "error", err)
		}
		return 0
	}
	return n
}

func (s *AccountService) recordFailedAttempt(ctx context.Context, mobile string) int {
	if s.redis == nil {
		return s.attempts.incr(mobile, s.now(), s.opts.CodeTTL)
	}
	key := otpAttemptsPrefix + mobile
	n, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		s.log.Warnw("attempt counter unavailable", "error", err)
		return 0
	}
	if n == 1 {
		if err := s.redis.Expire(ctx, key, s.opts.CodeTTL).Err(); err != nil {
			s.log.Warnw("failed to set attempt window", "error", err)
		}
	}
	return int(n)
}

func (s *AccountService) resetAttempts(ctx context.Context, mobile string) {
	if s.redis == nil {
		s.attempts.reset(mobile)
		return
	}
	if err := s.redis.Del(ctx, otpAttemptsPrefix+mobile).Err(); err != nil {
		s.log.Warnw("failed to reset attempt counter", "error", err)
	}
}

func (s *AccountService) deliverCode(ctx context.Context, mobile, code, reason string) {
	if s.metrics != nil {
		s.metrics.CodesIssued.WithLabelValues(reason).Inc()
	}
	if s.sender == nil {
		return
	}
	if err := s.sender.SendCode(ctx, mobile, code); err != nil {
		// the code is stored; the user can ask for another one
		s.log.Errorw("code delivery failed", "reason", reason, "error", err)
	}
}

func (s *AccountService) recordVerify(outcome string) {
	if s.metrics != nil {
		s.metrics.CodeVerifies.WithLabelValues(outcome).Inc()
	}
}
