package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ecotrack/backend/internal/models"
)

// Memory is an in-process Store. Users keep insertion order, which is the
// tie-breaker for equal point totals.
type Memory struct {
	mu      sync.Mutex
	users   []*models.User
	byID    map[string]*models.User
	entries []models.CarbonEntry
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]*models.User)}
}

func copyUser(u *models.User) *models.User {
	c := *u
	if u.Age != nil {
		a := *u.Age
		c.Age = &a
	}
	if u.OTPExpiresAt != nil {
		t := *u.OTPExpiresAt
		c.OTPExpiresAt = &t
	}
	return &c
}

func (m *Memory) takenLocked(email, mobile, exceptID string) bool {
	for _, u := range m.users {
		if u.ID == exceptID {
			continue
		}
		if (email != "" && u.Email == email) || (mobile != "" && u.Mobile == mobile) {
			return true
		}
	}
	return false
}

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.takenLocked(u.Email, u.Mobile, "") {
		return ErrConflict
	}
	c := copyUser(u)
	m.users = append(m.users, c)
	m.byID[c.ID] = c
	return nil
}

func (m *Memory) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (m *Memory) FindUserByMobile(_ context.Context, mobile string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Mobile == mobile {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) EmailOrMobileTaken(_ context.Context, email, mobile string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.takenLocked(email, mobile, ""), nil
}

func (m *Memory) SetOTP(_ context.Context, userID, codeHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[userID]
	if !ok {
		return ErrNotFound
	}
	u.OTPHash = codeHash
	u.OTPExpiresAt = &expiresAt
	u.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) ClearOTP(_ context.Context, userID, codeHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[userID]
	if !ok || u.OTPHash == "" || u.OTPHash != codeHash {
		return false, nil
	}
	u.OTPHash = ""
	u.OTPExpiresAt = nil
	u.UpdatedAt = time.Now()
	return true, nil
}

func (m *Memory) UpdateProfile(_ context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Email != nil && m.takenLocked(*upd.Email, "", userID) {
		return nil, ErrConflict
	}

	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Country != nil {
		u.Country = *upd.Country
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Gender != nil {
		u.Gender = *upd.Gender
	}
	if upd.Age != nil {
		a := *upd.Age
		u.Age = &a
	}
	if upd.ProfileImage != nil {
		u.ProfileImage = *upd.ProfileImage
	}
	u.UpdatedAt = time.Now()
	return copyUser(u), nil
}

func (m *Memory) TopContributors(_ context.Context, limit int) ([]models.Contributor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var positive []*models.User
	for _, u := range m.users {
		if u.TotalPoints > 0 {
			positive = append(positive, u)
		}
	}
	sort.SliceStable(positive, func(i, j int) bool {
		return positive[i].TotalPoints > positive[j].TotalPoints
	})
	if len(positive) > limit {
		positive = positive[:limit]
	}

	contributors := make([]models.Contributor, 0, len(positive))
	for _, u := range positive {
		contributors = append(contributors, models.Contributor{
			ID:           u.ID,
			Name:         u.Name,
			Country:      u.Country,
			ProfileImage: u.ProfileImage,
			TotalPoints:  u.TotalPoints,
		})
	}
	return contributors, nil
}

func matchUser(u *models.User, f models.UserFilter) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			return false
		}
	}
	if f.Country != "" && u.Country != f.Country {
		return false
	}
	if f.Gender != "" && u.Gender != f.Gender {
		return false
	}
	if f.AgeMin != nil || f.AgeMax != nil {
		if u.Age == nil {
			return false
		}
		if f.AgeMin != nil && *u.Age < *f.AgeMin {
			return false
		}
		if f.AgeMax != nil && *u.Age > *f.AgeMax {
			return false
		}
	}
	if lo, hi, ok := models.PointsBounds(f.PointsBucket); ok {
		if lo != nil && u.TotalPoints < *lo {
			return false
		}
		if hi != nil && u.TotalPoints >= *hi {
			return false
		}
	}
	return true
}

func (m *Memory) ListUsers(_ context.Context, f models.UserFilter, page models.Page) ([]models.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []models.User
	for i := len(m.users) - 1; i >= 0; i-- {
		if matchUser(m.users[i], f) {
			matched = append(matched, *copyUser(m.users[i]))
		}
	}

	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return append([]models.User{}, matched[start:end]...), total, nil
}

func (m *Memory) CountUsers(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *Memory) CreateEntry(_ context.Context, e *models.CarbonEntry) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[e.UserID]
	if !ok {
		return 0, ErrNotFound
	}
	m.entries = append(m.entries, *e)
	u.TotalPoints += e.Points
	return u.TotalPoints, nil
}

func (m *Memory) ListEntries(_ context.Context, userID string, since time.Time) ([]models.CarbonEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := []models.CarbonEntry{}
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.UserID != userID {
			continue
		}
		if !since.IsZero() && e.CreatedAt.Before(since) {
			continue
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (m *Memory) CountEntries(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

func (m *Memory) SumActivityValue(_ context.Context, activityID string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sum float64
	for _, e := range m.entries {
		if e.ActivityID == activityID {
			sum += e.ActivityValue
		}
	}
	return sum, nil
}
