package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Hold временный резерв интервала на время заполнения формы записи.
// Принадлежит сессии, а не клиенту: данные клиента появляются только при подтверждении.
type Hold struct {
	ID        string
	SessionID string
	StylistID int64
	ServiceID int64
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Interval returns the held [start, end) interval
func (h *Hold) Interval() Interval {
	return Interval{Start: h.StartTime, End: h.EndTime}
}

// IsExpired returns true if the hold is no longer active at now
func (h *Hold) IsExpired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// OwnedBy returns true if the hold belongs to sessionID
func (h *Hold) OwnedBy(sessionID string) bool {
	return sessionID != "" && h.SessionID == sessionID
}
