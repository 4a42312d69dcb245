package audit

import (
	"time"

	"go.uber.org/zap"
)

type Event struct {
	Timestamp time.Time
	EventType string
	UserID    string
	Status    string
	Details   map[string]any
}

// Logger writes audit events as structured records on a dedicated logger.
type Logger struct {
	log *zap.SugaredLogger
	now func() time.Time
}

func NewLogger(log *zap.SugaredLogger) *Logger {
	return &Logger{log: log.Named("audit"), now: time.Now}
}

func (a *Logger) LogRegistration(userID, mobile string) {
	a.write(Event{
		EventType: "REGISTER",
		UserID:    userID,
		Status:    "SUCCESS",
		Details:   map[string]any{"mobile": maskMobile(mobile)},
	})
}

func (a *Logger) LogLogin(userID string, ok bool) {
	status := "SUCCESS"
	if !ok {
		status = "FAILED"
	}
	a.write(Event{EventType: "LOGIN", UserID: userID, Status: status})
}

func (a *Logger) LogLogout(userID, tokenID string) {
	a.write(Event{
		EventType: "LOGOUT",
		UserID:    userID,
		Status:    "SUCCESS",
		Details:   map[string]any{"jti": tokenID},
	})
}

func (a *Logger) LogEntry(userID, entryID, activityID string, points, newTotal float64) {
	a.write(Event{
		EventType: "CARBON_ENTRY",
		UserID:    userID,
		Status:    "SUCCESS",
		Details: map[string]any{
			"entry_id":     entryID,
			"activity_id":  activityID,
			"points":       points,
			"total_points": newTotal,
		},
	})
}

func (a *Logger) LogError(userID, operation string, err error) {
	a.write(Event{
		EventType: operation,
		UserID:    userID,
		Status:    "FAILED",
		Details:   map[string]any{"error": err.Error()},
	})
}

func (a *Logger) write(e Event) {
	if a == nil {
		return
	}
	e.Timestamp = a.now()
	kv := []any{
		"event_type", e.EventType,
		"user_id", e.UserID,
		"status", e.Status,
		"timestamp", e.Timestamp,
	}
	for k, v := range e.Details {
		kv = append(kv, k, v)
	}
	a.log.Infow("audit", kv...)
}

// maskMobile keeps the last four digits.
func maskMobile(mobile string) string {
	if len(mobile) <= 4 {
		return mobile
	}
	masked := make([]byte, len(mobile))
	for i := range mobile {
		if i < len(mobile)-4 {
			masked[i] = '*'
		} else {
			masked[i] = mobile[i]
		}
	}
	return string(masked)
}
