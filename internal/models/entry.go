package models

import "time"

// Activity categories.
const (
	CategoryProducing = "carbon-producing"
	CategoryReducing  = "carbon-reducing"
)

// CarbonEntry is one logged activity. It is written once and never updated.
type CarbonEntry struct {
	ID            string    `json:"_id" db:"id"`
	UserID        string    `json:"user" db:"user_id"`
	ActivityID    string    `json:"activityId" db:"activity_id"`
	ActivityType  string    `json:"activityType" db:"activity_type"`
	Title         string    `json:"title" db:"title"`
	ActivityValue float64   `json:"activityValue" db:"activity_value"`
	Points        float64   `json:"points" db:"points"`
	PhotoURL      string    `json:"photoUrl,omitempty" db:"photo_url"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// DashboardStats summarises the whole ledger for administrators.
type DashboardStats struct {
	TotalUsers   int     `json:"totalUsers"`
	TotalEntries int     `json:"totalEntries"`
	TreesPlanted float64 `json:"treesPlanted"`
}
