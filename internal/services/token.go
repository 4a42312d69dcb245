package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ecotrack/backend/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const revokedKeyPrefix = "session:revoked:"

type sessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenManager issues and checks HS256 session tokens. Revoked token ids are
// kept in Redis when available, otherwise in process.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewTokenManager(secret string, ttl time.Duration, redisClient *redis.Client) *TokenManager {
	return &TokenManager{
		secret:  []byte(secret),
		ttl:     ttl,
		redis:   redisClient,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// Issue signs a new token for userID.
func (m *TokenManager) Issue(userID string) (*models.Session, error) {
	now := m.now()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		UserID:    userID,
		TokenID:   claims.ID,
		Token:     signed,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify parses token and rejects bad signatures, expired or revoked tokens.
func (m *TokenManager) Verify(ctx context.Context, token string) (*models.Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, Unauthorized("Not authorized, token failed")
	}
	if claims.UserID == "" || claims.ID == "" {
		return nil, Unauthorized("Not authorized, token failed")
	}

	revoked, err := m.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, Internal("session lookup failed", err)
	}
	if revoked {
		return nil, Unauthorized("Session has been logged out")
	}

	return &models.Session{
		UserID:    claims.UserID,
		TokenID:   claims.ID,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke invalidates the session until its natural expiry.
func (m *TokenManager) Revoke(ctx context.Context, s *models.Session) error {
	remaining := s.ExpiresAt.Sub(m.now())
	if remaining <= 0 {
		return nil
	}

	if m.redis != nil {
		return m.redis.Set(ctx, revokedKeyPrefix+s.TokenID, "1", remaining).Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, exp := range m.revoked {
		if !exp.After(now) {
			delete(m.revoked, id)
		}
	}
	m.revoked[s.TokenID] = s.ExpiresAt
	return nil
}

func (m *TokenManager) isRevoked(ctx context.Context, tokenID string) (bool, error) {
	if m.redis != nil {
		n, err := m.redis.Exists(ctx, revokedKeyPrefix+tokenID).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return false, err
		}
		return n > 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.revoked[tokenID]
	return ok && exp.After(m.now()), nil
}
