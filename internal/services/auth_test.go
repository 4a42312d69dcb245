package services

import (
	"context"
	"testing"
	"time"

	"github.com/ecotrack/backend/internal/models"
	"github.com/ecotrack/backend/internal/store"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Register(t *testing.T) {
	f := newAccountFixture(t, nil)
	ctx := context.Background()

	t.Run("successful registration", func(t *testing.T) {
		res, err := f.svc.Register(ctx, RegisterRequest{
			Name: "  Asha Rao ", Email: "Asha@Example.com", Mobile: "5551234567", Country: "India",
		}, nil)
		require.NoError(t, err)

		assert.NotEmpty(t, res.Session.Token)
		assert.Equal(t, "Asha Rao", res.User.Name)
		assert.Equal(t, "asha@example.com", res.User.Email)
		assert.Equal(t, 0.0, res.User.TotalPoints)
		assert.Regexp(t, `^[1-9][0-9]{5}$`, f.codes["5551234567"])

		stored, err := f.store.FindUserByMobile(ctx, "5551234567")
		require.NoError(t, err)
		assert.NotEqual(t, f.codes["5551234567"], stored.OTPHash, "code is stored as a digest")
		require.NotNil(t, stored.OTPExpiresAt)
		assert.Equal(t, f.clock.Now().Add(10*time.Minute), *stored.OTPExpiresAt)
	})

	t.Run("duplicate mobile", func(t *testing.T) {
		_, err := f.svc.Register(ctx, RegisterRequest{
			Name: "Other", Email: "other@example.com", Mobile: "5551234567", Country: "India",
		}, nil)
		assert.Equal(t, KindConflict, KindOf(err))
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.svc.Register(ctx, RegisterRequest{
			Name: "Other", Email: "asha@example.com", Mobile: "5559999999", Country: "India",
		}, nil)
		assert.Equal(t, KindConflict, KindOf(err))
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := f.svc.Register(ctx, RegisterRequest{
			Name: "A", Email: "not-an-email", Mobile: "12ab", Country: "",
		}, nil)
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

func TestAccountService_RegisterWithImage(t *testing.T) {
	f := newAccountFixture(t, nil)
	img := &Upload{Filename: "me.PNG", ContentType: "image/png", Data: []byte("png")}

	f.blobs.On("Save", mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > 5 && key[:5] == "user-" && key[len(key)-4:] == ".png"
	}), "image/png", []byte("png")).Return("/uploads/user-1.png", nil)

	res, err := f.svc.Register(context.Background(), RegisterRequest{
		Name: "Asha", Email: "asha@example.com", Mobile: "5551234567", Country: "India",
	}, img)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/user-1.png", res.User.ProfileImage)
	f.blobs.AssertExpectations(t)
}

// conflictOnCreate loses every insert race, as if another request registered
// the same identity between the check and the insert.
type conflictOnCreate struct {
	*store.Memory
}

func (conflictOnCreate) CreateUser(context.Context, *models.User) error {
	return store.ErrConflict
}

func TestAccountService_RegisterConflictRemovesImage(t *testing.T) {
	f := newAccountFixture(t, nil)
	f.svc.users = conflictOnCreate{f.store}

	var savedKey string
	f.blobs.On("Save", mock.Anything, mock.AnythingOfType("string"), "image/png", []byte("png")).
		Run(func(args mock.Arguments) { savedKey = args.String(1) }).
		Return("/uploads/user-1.png", nil)
	f.blobs.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	_, err := f.svc.Register(context.Background(), RegisterRequest{
		Name: "Asha", Email: "asha@example.com", Mobile: "5551234567", Country: "India",
	}, &Upload{Filename: "me.png", ContentType: "image/png", Data: []byte("png")})
	assert.Equal(t, KindConflict, KindOf(err))

	f.blobs.AssertCalled(t, "Delete", mock.Anything, savedKey)
}

func TestAccountService_UpdateProfileConflictRemovesImage(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t, nil)
	asha := f.register(t, "Asha", "asha@example.com", "5551234567")
	f.register(t, "Ravi", "ravi@example.com", "5557654321")

	f.blobs.On("Save", mock.Anything, mock.AnythingOfType("string"), "image/jpeg", []byte("jpg")).
		Return("/uploads/user-2.jpg", nil)
	f.blobs.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	email := "ravi@example.com"
	_, err := f.svc.UpdateProfile(ctx, asha.User.ID, UpdateProfileRequest{Email: &email},
		&Upload{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte("jpg")})
	assert.Equal(t, KindConflict, KindOf(err))
	f.blobs.AssertExpectations(t)

	p, err := f.svc.GetProfile(ctx, asha.User.ID)
	require.NoError(t, err)
	assert.Empty(t, p.ProfileImage)
}

func wrongCode(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}

func TestAccountService_VerifyAttemptCap(t *testing.T) {
	ctx := context.Background()

	t.Run("code is burned after repeated failures", func(t *testing.T) {
		f := newAccountFixture(t, nil)
		f.register(t, "Asha", "asha@example.com", "5551234567")
		code := f.codes["5551234567"]

		for i := 0; i < 5; i++ {
			_, err := f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: wrongCode(code)})
			require.Equal(t, KindInvalidOrExpired, KindOf(err), "attempt %d", i+1)
		}

		_, err := f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: code})
		assert.Equal(t, KindRateLimited, KindOf(err))

		u, err := f.store.FindUserByMobile(ctx, "5551234567")
		require.NoError(t, err)
		assert.Empty(t, u.OTPHash)
	})

	t.Run("a fresh code reopens verification", func(t *testing.T) {
		f := newAccountFixture(t, nil)
		f.register(t, "Asha", "asha@example.com", "5551234567")
		for i := 0; i < 5; i++ {
			_, _ = f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: wrongCode(f.codes["5551234567"])})
		}

		require.NoError(t, f.svc.RequestCode(ctx, LoginRequest{Mobile: "5551234567"}))
		_, err := f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: f.codes["5551234567"]})
		assert.NoError(t, err)
	})

	t.Run("failures below the cap reset on success", func(t *testing.T) {
		f := newAccountFixture(t, nil)
		f.register(t, "Asha", "asha@example.com", "5551234567")
		code := f.codes["5551234567"]

		for i := 0; i < 4; i++ {
			_, _ = f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: wrongCode(code)})
		}
		_, err := f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: code})
		require.NoError(t, err)
		assert.Zero(t, f.svc.attempts.count("5551234567", f.clock.Now()))
	})

	t.Run("redis counter", func(t *testing.T) {
		rdb, rmock := redismock.NewClientMock()
		f := newAccountFixture(t, rdb)
		f.register(t, "Asha", "asha@example.com", "5551234567")
		code := f.codes["5551234567"]
		key := "otp:attempts:5551234567"

		rmock.ExpectGet(key).RedisNil()
		rmock.ExpectIncr(key).SetVal(1)
		rmock.ExpectExpire(key, 10*time.Minute).SetVal(true)
		_, err := f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: wrongCode(code)})
		assert.Equal(t, KindInvalidOrExpired, KindOf(err))

		rmock.ExpectGet(key).SetVal("5")
		_, err = f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: code})
		assert.Equal(t, KindRateLimited, KindOf(err))

		assert.NoError(t, rmock.ExpectationsWereMet())
	})
}

func TestAccountService_VerifyCode(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds once per code", func(t *testing.T) {
		f := newAccountFixture(t, nil)
		f.register(t, "Asha", "asha@example.com", "5551234567")
		code := f.codes["5551234567"]

		res, err := f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: code})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Session.Token)
		assert.Equal(t, 0.0, res.User.TotalPoints)

		_, err = f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: code})
		assert.Equal(t, KindInvalidOrExpired, KindOf(err))
	})

	t.Run("wrong code", func(t *testing.T) {
		f := newAccountFixture(t, nil)
		f.register(t, "Asha", "asha@example.com", "5551234567")
		wrong := "000000"
		if f.codes["5551234567"] == wrong {
			wrong = "000001"
		}

		_, err := f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: wrong})
		assert.Equal(t, KindInvalidOrExpired, KindOf(err))
	})

	t.Run("accepted at 9m59s", func(t *testing.T) {
		f := newAccountFixture(t, nil)
		f.register(t, "Asha", "asha@example.com", "5551234567")
		f.clock.Advance(9*time.Minute + 59*time.Second)

		_, err := f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: f.codes["5551234567"]})
		assert.NoError(t, err)
	})

	t.Run("rejected at 10m00s", func(t *testing.T) {
		f := newAccountFixture(t, nil)
		f.register(t, "Asha", "asha@example.com", "5551234567")
		f.clock.Advance(10 * time.Minute)

		_, err := f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: f.codes["5551234567"]})
		assert.Equal(t, KindInvalidOrExpired, KindOf(err))
	})

	t.Run("unknown mobile", func(t *testing.T) {
		f := newAccountFixture(t, nil)
		_, err := f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5550000000", OTP: "123456"})
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newAccountFixture(t, nil)
		_, err := f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5550000000"})
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

func TestAccountService_RequestCode(t *testing.T) {
	ctx := context.Background()

	t.Run("second request invalidates the first code", func(t *testing.T) {
		f := newAccountFixture(t, nil)
		f.register(t, "Asha", "asha@example.com", "5551234567")

		require.NoError(t, f.svc.RequestCode(ctx, LoginRequest{Mobile: "5551234567"}))
		first := f.codes["5551234567"]
		require.NoError(t, f.svc.RequestCode(ctx, LoginRequest{Mobile: "5551234567"}))
		second := f.codes["5551234567"]

		if first != second {
			_, err := f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: first})
			assert.Equal(t, KindInvalidOrExpired, KindOf(err))
		}
		_, err := f.svc.VerifyCode(ctx, VerifyRequest{Mobile: "5551234567", OTP: second})
		assert.NoError(t, err)
	})

	t.Run("unknown mobile", func(t *testing.T) {
		f := newAccountFixture(t, nil)
		err := f.svc.RequestCode(ctx, LoginRequest{Mobile: "5550000000"})
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("delivery failure does not fail the request", func(t *testing.T) {
		f := newAccountFixture(t, nil)
		f.register(t, "Asha", "asha@example.com", "5551234567")

		sender := &MockCodeSender{}
		sender.On("SendCode", mock.Anything, "5551234567", mock.Anything).Return(assert.AnError)
		f.svc.sender = sender

		assert.NoError(t, f.svc.RequestCode(ctx, LoginRequest{Mobile: "5551234567"}))
		sender.AssertExpectations(t)
	})
}

func TestAccountService_RequestCodeRateLimit(t *testing.T) {
	ctx := context.Background()
	key := "otp:ratelimit:5551234567"

	t.Run("first request opens the window", func(t *testing.T) {
		rdb, rmock := redismock.NewClientMock()
		f := newAccountFixture(t, rdb)
		f.register(t, "Asha", "asha@example.com", "5551234567")

		rmock.ExpectIncr(key).SetVal(1)
		rmock.ExpectExpire(key, time.Hour).SetVal(true)
		rmock.ExpectDel("otp:attempts:5551234567").SetVal(0)

		require.NoError(t, f.svc.RequestCode(ctx, LoginRequest{Mobile: "5551234567"}))
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("over the limit", func(t *testing.T) {
		rdb, rmock := redismock.NewClientMock()
		f := newAccountFixture(t, rdb)
		f.register(t, "Asha", "asha@example.com", "5551234567")
		before := f.codes["5551234567"]

		rmock.ExpectIncr(key).SetVal(6)

		err := f.svc.RequestCode(ctx, LoginRequest{Mobile: "5551234567"})
		assert.Equal(t, KindRateLimited, KindOf(err))
		assert.Equal(t, before, f.codes["5551234567"], "no new code is sent")
		assert.NoError(t, rmock.ExpectationsWereMet())
	})
}

func TestAccountService_Profile(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t, nil)
	asha := f.register(t, "Asha", "asha@example.com", "5551234567")
	f.register(t, "Ravi", "ravi@example.com", "5557654321")

	t.Run("get", func(t *testing.T) {
		p, err := f.svc.GetProfile(ctx, asha.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "Asha", p.Name)

		_, err = f.svc.GetProfile(ctx, "missing")
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("update provided fields", func(t *testing.T) {
		bio := "Cyclist"
		gender := "Female"
		age := 29
		p, err := f.svc.UpdateProfile(ctx, asha.User.ID, UpdateProfileRequest{Bio: &bio, Gender: &gender, Age: &age}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Cyclist", p.Bio)
		assert.Equal(t, "Female", p.Gender)
		require.NotNil(t, p.Age)
		assert.Equal(t, 29, *p.Age)
		assert.Equal(t, "Asha", p.Name)
	})

	t.Run("malformed email", func(t *testing.T) {
		email := "nope"
		_, err := f.svc.UpdateProfile(ctx, asha.User.ID, UpdateProfileRequest{Email: &email}, nil)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("empty name", func(t *testing.T) {
		name := "  "
		_, err := f.svc.UpdateProfile(ctx, asha.User.ID, UpdateProfileRequest{Name: &name}, nil)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("empty gender clears it", func(t *testing.T) {
		gender := "Other"
		p, err := f.svc.UpdateProfile(ctx, asha.User.ID, UpdateProfileRequest{Gender: &gender}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Other", p.Gender)

		cleared := " "
		p, err = f.svc.UpdateProfile(ctx, asha.User.ID, UpdateProfileRequest{Gender: &cleared}, nil)
		require.NoError(t, err)
		assert.Empty(t, p.Gender)
	})

	t.Run("unknown gender", func(t *testing.T) {
		gender := "Robot"
		_, err := f.svc.UpdateProfile(ctx, asha.User.ID, UpdateProfileRequest{Gender: &gender}, nil)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("email taken", func(t *testing.T) {
		email := "RAVI@example.com"
		_, err := f.svc.UpdateProfile(ctx, asha.User.ID, UpdateProfileRequest{Email: &email}, nil)
		assert.Equal(t, KindConflict, KindOf(err))
	})

	t.Run("new image", func(t *testing.T) {
		f.blobs.On("Save", mock.Anything, mock.AnythingOfType("string"), "image/jpeg", []byte("jpg")).
			Return("/uploads/user-2.jpg", nil).Once()

		p, err := f.svc.UpdateProfile(ctx, asha.User.ID, UpdateProfileRequest{},
			&Upload{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte("jpg")})
		require.NoError(t, err)
		assert.Equal(t, "/uploads/user-2.jpg", p.ProfileImage)
	})
}

func TestAccountService_LogoutAndAdmin(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t, nil)
	res := f.register(t, "Asha", "asha@example.com", "5551234567")

	session, err := f.tokens.Verify(ctx, res.Session.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, session))

	_, err = f.tokens.Verify(ctx, res.Session.Token)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	isAdmin, err := f.svc.IsAdmin(ctx, res.User.ID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	_, err = f.svc.IsAdmin(ctx, "missing")
	assert.Equal(t, KindNotFound, KindOf(err))
}
