package services

import "time"

// Time windows accepted by the entry history and leaderboard endpoints.
const (
	WindowDay   = "day"
	WindowWeek  = "week"
	WindowMonth = "month"
	WindowYear  = "year"
	WindowAll   = "all"
)

// WindowStart returns the first instant of the calendar window containing now,
// evaluated in loc. Weeks start on Sunday. The zero time means "no bound"; it is
// returned for "all", "" and unknown windows.
func WindowStart(window string, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t := now.In(loc)
	y, m, d := t.Date()

	switch window {
	case WindowDay:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case WindowWeek:
		return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, loc)
	case WindowMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case WindowYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	case WindowAll:
		return time.Time{}
	default:
		return time.Time{}
	}
}
