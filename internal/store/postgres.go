package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ecotrack/backend/internal/models"
	"github.com/lib/pq"
)

const userColumns = `id, name, email, mobile, country, bio, gender, age, profile_image, otp_hash, otp_expires_at, is_admin, total_points, created_at, updated_at`

const entryColumns = `id, user_id, activity_id, activity_type, title, activity_value, points, photo_url, created_at`

// Postgres is the PostgreSQL-backed Store.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var bio, gender, image, otpHash sql.NullString
	var age sql.NullInt64
	var otpExpires sql.NullTime

	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Mobile, &u.Country, &bio, &gender, &age, &image,
		&otpHash, &otpExpires, &u.IsAdmin, &u.TotalPoints, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	u.Bio = bio.String
	u.Gender = gender.String
	u.ProfileImage = image.String
	u.OTPHash = otpHash.String
	if age.Valid {
		a := int(age.Int64)
		u.Age = &a
	}
	if otpExpires.Valid {
		t := otpExpires.Time
		u.OTPExpiresAt = &t
	}
	return &u, nil
}

func scanEntry(row rowScanner) (models.CarbonEntry, error) {
	var e models.CarbonEntry
	var photo sql.NullString
	err := row.Scan(&e.ID, &e.UserID, &e.ActivityID, &e.ActivityType, &e.Title, &e.ActivityValue, &e.Points, &photo, &e.CreatedAt)
	e.PhotoURL = photo.String
	return e, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == "23505"
}

func isForeignKeyViolation(err error) bool {
	return pqCode(err) == "23503"
}

func (p *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, mobile, country, bio, profile_image, otp_hash, otp_expires_at, is_admin, total_points, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		u.ID, u.Name, u.Email, u.Mobile, u.Country, nullString(u.Bio), nullString(u.ProfileImage),
		nullString(u.OTPHash), u.OTPExpiresAt, u.IsAdmin, u.TotalPoints, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (p *Postgres) findUser(ctx context.Context, where string, arg any) (*models.User, error) {
	u, err := scanUser(p.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (p *Postgres) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return p.findUser(ctx, `id = $1`, id)
}

func (p *Postgres) FindUserByMobile(ctx context.Context, mobile string) (*models.User, error) {
	return p.findUser(ctx, `mobile = $1`, mobile)
}

func (p *Postgres) EmailOrMobileTaken(ctx context.Context, email, mobile string) (bool, error) {
	var taken bool
	err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR mobile = $2)`, email, mobile).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check identity: %w", err)
	}
	return taken, nil
}

func (p *Postgres) SetOTP(ctx context.Context, userID, codeHash string, expiresAt time.Time) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE users SET otp_hash = $1, otp_expires_at = $2, updated_at = $3
		WHERE id = $4`, codeHash, expiresAt, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ClearOTP(ctx context.Context, userID, codeHash string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE users SET otp_hash = NULL, otp_expires_at = NULL, updated_at = $1
		WHERE id = $2 AND otp_hash = $3`, time.Now(), userID, codeHash)
	if err != nil {
		return false, fmt.Errorf("clear otp: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (p *Postgres) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.Email != nil {
		set("email", *upd.Email)
	}
	if upd.Country != nil {
		set("country", *upd.Country)
	}
	if upd.Bio != nil {
		set("bio", nullString(*upd.Bio))
	}
	if upd.Gender != nil {
		set("gender", nullString(*upd.Gender))
	}
	if upd.Age != nil {
		set("age", *upd.Age)
	}
	if upd.ProfileImage != nil {
		set("profile_image", nullString(*upd.ProfileImage))
	}
	set("updated_at", time.Now())

	args = append(args, userID)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	u, err := scanUser(p.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (p *Postgres) TopContributors(ctx context.Context, limit int) ([]models.Contributor, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, country, profile_image, total_points
		FROM users
		WHERE total_points > 0
		ORDER BY total_points DESC, created_at ASC, id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select contributors: %w", err)
	}
	defer rows.Close()

	contributors := []models.Contributor{}
	for rows.Next() {
		var c models.Contributor
		var image sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Country, &image, &c.TotalPoints); err != nil {
			return nil, err
		}
		c.ProfileImage = image.String
		contributors = append(contributors, c)
	}
	return contributors, rows.Err()
}

// escapeLike makes s a literal LIKE pattern (backslash escape).
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func buildUserWhere(f models.UserFilter) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		pattern := arg("%" + escapeLike(f.Search) + "%")
		conds = append(conds, fmt.Sprintf(`(name ILIKE %[1]s ESCAPE '\' OR email ILIKE %[1]s ESCAPE '\')`, pattern))
	}
	if f.Country != "" {
		conds = append(conds, "country = "+arg(f.Country))
	}
	if f.Gender != "" {
		conds = append(conds, "gender = "+arg(f.Gender))
	}
	if f.AgeMin != nil {
		conds = append(conds, "age >= "+arg(*f.AgeMin))
	}
	if f.AgeMax != nil {
		conds = append(conds, "age <= "+arg(*f.AgeMax))
	}
	if lo, hi, ok := models.PointsBounds(f.PointsBucket); ok {
		if lo != nil {
			conds = append(conds, "total_points >= "+arg(*lo))
		}
		if hi != nil {
			conds = append(conds, "total_points < "+arg(*hi))
		}
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (p *Postgres) ListUsers(ctx context.Context, f models.UserFilter, page models.Page) ([]models.User, int, error) {
	where, args := buildUserWhere(f)

	var total int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, n+1, n+2)
	rows, err := p.db.QueryContext(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (p *Postgres) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (p *Postgres) CreateEntry(ctx context.Context, e *models.CarbonEntry) (float64, error) {
	var total float64
	err := WithTx(ctx, p.db, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO carbon_entries (`+entryColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, e.UserID, e.ActivityID, e.ActivityType, e.Title, e.ActivityValue, e.Points,
			nullString(e.PhotoURL), e.CreatedAt)
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}

		err = tx.QueryRowContext(ctx, `
			UPDATE users SET total_points = total_points + $1, updated_at = $2
			WHERE id = $3
			RETURNING total_points`, e.Points, e.CreatedAt, e.UserID).Scan(&total)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("increment points: %w", err)
		}
		return nil
	})
	return total, err
}

func (p *Postgres) ListEntries(ctx context.Context, userID string, since time.Time) ([]models.CarbonEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM carbon_entries WHERE user_id = $1`
	args := []any{userID}
	if !since.IsZero() {
		query += ` AND created_at >= $2`
		args = append(args, since)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	defer rows.Close()

	entries := []models.CarbonEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *Postgres) CountEntries(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM carbon_entries`).Scan(&n)
	return n, err
}

func (p *Postgres) SumActivityValue(ctx context.Context, activityID string) (float64, error) {
	var sum float64
	err := p.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(activity_value), 0) FROM carbon_entries WHERE activity_id = $1`, activityID).Scan(&sum)
	return sum, err
}
