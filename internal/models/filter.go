package models

// Points buckets for the admin listing.
const (
	PointsHigh     = "high"
	PointsMedium   = "medium"
	PointsLow      = "low"
	PointsNegative = "negative"
)

// UserFilter holds one optional field per supported admin filter dimension.
type UserFilter struct {
	Search       string
	Country      string
	Gender       string
	AgeMin       *int
	AgeMax       *int
	PointsBucket string
}

// PointsBounds returns the [min, max) interval of a bucket; nil means unbounded.
// ok is false for unknown buckets.
func PointsBounds(bucket string) (lo, hi *float64, ok bool) {
	f := func(v float64) *float64 { return &v }
	switch bucket {
	case PointsHigh:
		return f(300), nil, true
	case PointsMedium:
		return f(100), f(300), true
	case PointsLow:
		return f(0), f(100), true
	case PointsNegative:
		return nil, f(0), true
	}
	return nil, nil, false
}

// Page is a window into an ordered listing.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset of the first row of the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination metadata returned with a page of results.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}
