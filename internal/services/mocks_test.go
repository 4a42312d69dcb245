package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ecotrack/backend/internal/audit"
	"github.com/ecotrack/backend/internal/config"
	"github.com/ecotrack/backend/internal/metrics"
	"github.com/ecotrack/backend/internal/models"
	"github.com/ecotrack/backend/internal/store"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCodeSender struct {
	mock.Mock
}

func (m *MockCodeSender) SendCode(ctx context.Context, mobile, code string) error {
	args := m.Called(ctx, mobile, code)
	return args.Error(0)
}

// capture records every code sent to a mobile; the last one wins.
func (m *MockCodeSender) capture() map[string]string {
	var mu sync.Mutex
	codes := map[string]string{}
	m.On("SendCode", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			mu.Lock()
			defer mu.Unlock()
			codes[args.String(1)] = args.String(2)
		}).
		Return(nil)
	return codes
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Save(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// testClock is a settable clock shared by services under test.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{t: t} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *testClock) Advance(d time.Duration) { c.Set(c.Now().Add(d)) }

var testArgon2 = config.Argon2Config{Time: 1, Memory: 1024, Threads: 1, KeyLength: 32}

type accountFixture struct {
	svc    *AccountService
	store  *store.Memory
	tokens *TokenManager
	sender *MockCodeSender
	codes  map[string]string
	blobs  *MockBlobStore
	clock  *testClock
}

func newAccountFixture(t *testing.T, rdb *redis.Client) *accountFixture {
	t.Helper()
	clock := newTestClock(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	st := store.NewMemory()
	tokens := NewTokenManager("test-secret", 24*time.Hour, rdb)
	tokens.now = clock.Now
	sender := &MockCodeSender{}
	codes := sender.capture()
	blobs := &MockBlobStore{}
	log := zap.NewNop().Sugar()

	svc := NewAccountService(st, tokens, NewCodeHasher("pepper", testArgon2), sender, blobs, rdb,
		metrics.New(), audit.NewLogger(log), log, AccountOptions{})
	svc.now = clock.Now

	return &accountFixture{svc: svc, store: st, tokens: tokens, sender: sender, codes: codes, blobs: blobs, clock: clock}
}

func (f *accountFixture) register(t *testing.T, name, email, mobile string) *AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), RegisterRequest{
		Name: name, Email: email, Mobile: mobile, Country: "India",
	}, nil)
	require.NoError(t, err)
	return res
}

func seedUser(t *testing.T, st *store.Memory, id string) {
	t.Helper()
	require.NoError(t, st.CreateUser(context.Background(), &models.User{
		ID: id, Name: "User " + id, Email: id + "@example.com", Mobile: "555" + id, Country: "India",
	}))
}
