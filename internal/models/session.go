package models

import "time"

// Session is the verified identity behind a bearer token. It is immutable once
// built and travels through the request context.
type Session struct {
	UserID    string
	TokenID   string
	Token     string
	ExpiresAt time.Time
}
