package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ecotrack/backend/internal/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

var userRowColumns = []string{"id", "name", "email", "mobile", "country", "bio", "gender", "age",
	"profile_image", "otp_hash", "otp_expires_at", "is_admin", "total_points", "created_at", "updated_at"}

func sampleEntry() *models.CarbonEntry {
	return &models.CarbonEntry{
		ID:            "entry-1",
		UserID:        "user-1",
		ActivityID:    "renewable-energy",
		ActivityType:  models.CategoryReducing,
		Title:         "Renewable Energy",
		ActivityValue: 30,
		Points:        15,
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPostgres_CreateEntry(t *testing.T) {
	t.Run("insert and increment in one transaction", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		e := sampleEntry()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO carbon_entries").
			WithArgs(e.ID, e.UserID, e.ActivityID, e.ActivityType, e.Title, e.ActivityValue, e.Points, sqlmock.AnyArg(), e.CreatedAt).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET total_points = total_points + $1")).
			WithArgs(e.Points, e.CreatedAt, e.UserID).
			WillReturnRows(sqlmock.NewRows([]string{"total_points"}).AddRow(25.0))
		mock.ExpectCommit()

		total, err := p.CreateEntry(context.Background(), e)
		require.NoError(t, err)
		assert.Equal(t, 25.0, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		p, mock := newMockPostgres(t)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO carbon_entries").WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		_, err := p.CreateEntry(context.Background(), sampleEntry())
		assert.ErrorContains(t, err, "disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user rolls back with not found", func(t *testing.T) {
		p, mock := newMockPostgres(t)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO carbon_entries").WillReturnError(&pq.Error{Code: "23503"})
		mock.ExpectRollback()

		_, err := p.CreateEntry(context.Background(), sampleEntry())
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increment failure rolls back", func(t *testing.T) {
		p, mock := newMockPostgres(t)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO carbon_entries").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery("UPDATE users SET total_points").WillReturnError(errors.New("conn reset"))
		mock.ExpectRollback()

		_, err := p.CreateEntry(context.Background(), sampleEntry())
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgres_CreateUser(t *testing.T) {
	u := &models.User{ID: "user-1", Name: "Asha", Email: "asha@example.com", Mobile: "5551234567", Country: "India"}

	t.Run("success", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, p.CreateUser(context.Background(), u))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation is a conflict", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

		assert.ErrorIs(t, p.CreateUser(context.Background(), u), ErrConflict)
	})
}

func TestPostgres_FindUserByMobile(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		now := time.Now()
		expires := now.Add(10 * time.Minute)

		mock.ExpectQuery("SELECT .* FROM users WHERE mobile = \\$1").
			WithArgs("5551234567").
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
				"user-1", "Asha", "asha@example.com", "5551234567", "India", nil, "Female", int64(29),
				nil, "digest", expires, false, 10.0, now, now))

		u, err := p.FindUserByMobile(context.Background(), "5551234567")
		require.NoError(t, err)
		assert.Equal(t, "user-1", u.ID)
		assert.Equal(t, "Female", u.Gender)
		require.NotNil(t, u.Age)
		assert.Equal(t, 29, *u.Age)
		assert.Equal(t, "digest", u.OTPHash)
		require.NotNil(t, u.OTPExpiresAt)
		assert.Empty(t, u.Bio)
	})

	t.Run("missing", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		mock.ExpectQuery("SELECT .* FROM users WHERE mobile").WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err := p.FindUserByMobile(context.Background(), "000")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostgres_SetOTP(t *testing.T) {
	p, mock := newMockPostgres(t)
	expires := time.Now().Add(10 * time.Minute)

	mock.ExpectExec("UPDATE users SET otp_hash = \\$1").
		WithArgs("digest", expires, sqlmock.AnyArg(), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET otp_hash = \\$1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, p.SetOTP(context.Background(), "user-1", "digest", expires))
	assert.ErrorIs(t, p.SetOTP(context.Background(), "ghost", "digest", expires), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ClearOTP(t *testing.T) {
	p, mock := newMockPostgres(t)
	clear := regexp.QuoteMeta("WHERE id = $2 AND otp_hash = $3")

	mock.ExpectExec(clear).WithArgs(sqlmock.AnyArg(), "user-1", "digest").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(clear).WithArgs(sqlmock.AnyArg(), "user-1", "digest").WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := p.ClearOTP(context.Background(), "user-1", "digest")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.ClearOTP(context.Background(), "user-1", "digest")
	require.NoError(t, err)
	assert.False(t, ok, "second clear loses the compare-and-set")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateProfile(t *testing.T) {
	t.Run("sets only provided fields", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		name := "Asha R"
		age := 30
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET name = $1, age = $2, updated_at = $3 WHERE id = $4 RETURNING")).
			WithArgs(name, age, sqlmock.AnyArg(), "user-1").
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
				"user-1", name, "asha@example.com", "5551234567", "India", nil, nil, int64(age),
				nil, nil, nil, false, 0.0, now, now))

		u, err := p.UpdateProfile(context.Background(), "user-1", models.ProfileUpdate{Name: &name, Age: &age})
		require.NoError(t, err)
		assert.Equal(t, name, u.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		p, mock := newMockPostgres(t)
		email := "taken@example.com"
		mock.ExpectQuery("UPDATE users SET email").WillReturnError(&pq.Error{Code: "23505"})

		_, err := p.UpdateProfile(context.Background(), "user-1", models.ProfileUpdate{Email: &email})
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestPostgres_TopContributors(t *testing.T) {
	p, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE total_points > 0 ORDER BY total_points DESC, created_at ASC, id ASC")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "country", "profile_image", "total_points"}).
			AddRow("u2", "Ravi", "India", "/uploads/r.png", 40.0).
			AddRow("u1", "Asha", "India", nil, 15.0))

	top, err := p.TopContributors(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Ravi", top[0].Name)
	assert.Equal(t, "/uploads/r.png", top[0].ProfileImage)
	assert.Empty(t, top[1].ProfileImage)
}

func TestPostgres_ListUsers(t *testing.T) {
	p, mock := newMockPostgres(t)
	minAge, maxAge := 20, 30
	f := models.UserFilter{
		Search:       "50%_off",
		Country:      "India",
		AgeMin:       &minAge,
		AgeMax:       &maxAge,
		PointsBucket: models.PointsMedium,
	}
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE")).
		WithArgs(`%50\%\_off%`, "India", 20, 30, 100.0, 300.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC LIMIT $7 OFFSET $8")).
		WithArgs(`%50\%\_off%`, "India", 20, 30, 100.0, 300.0, 5, 10).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			"user-9", "Asha", "asha@example.com", "5551234567", "India", nil, nil, int64(25),
			nil, nil, nil, false, 150.0, now, now))

	users, total, err := p.ListUsers(context.Background(), f, models.Page{Page: 3, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, users, 1)
	assert.Equal(t, "user-9", users[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListEntries(t *testing.T) {
	p, mock := newMockPostgres(t)
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "user_id", "activity_id", "activity_type", "title", "activity_value", "points", "photo_url", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND created_at >= $2 ORDER BY created_at DESC")).
		WithArgs("user-1", since).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("e2", "user-1", "tree-planting", models.CategoryReducing, "Tree Planting", 2.0, 10.0, "/uploads/t.jpg", since.Add(2*time.Hour)).
			AddRow("e1", "user-1", "vehicle-usage", models.CategoryProducing, "Vehicle Usage", 5.0, -5.0, nil, since.Add(time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 ORDER BY created_at DESC")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(cols))

	entries, err := p.ListEntries(context.Background(), "user-1", since)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/uploads/t.jpg", entries[0].PhotoURL)
	assert.Empty(t, entries[1].PhotoURL)

	entries, err = p.ListEntries(context.Background(), "user-1", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
}

func TestPostgres_Stats(t *testing.T) {
	p, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM carbon_entries")).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(SUM(activity_value), 0)")).
		WithArgs("tree-planting").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(12.0))

	users, err := p.CountUsers(context.Background())
	require.NoError(t, err)
	entries, err := p.CountEntries(context.Background())
	require.NoError(t, err)
	trees, err := p.SumActivityValue(context.Background(), "tree-planting")
	require.NoError(t, err)

	assert.Equal(t, 3, users)
	assert.Equal(t, 7, entries)
	assert.Equal(t, 12.0, trees)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
