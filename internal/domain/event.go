package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// EventType тип события по записи для внешнего нотификатора
type EventType string

const (
	EventAppointmentBooked        EventType = "appointment.booked"
	EventAppointmentRescheduled   EventType = "appointment.rescheduled"
	EventAppointmentCancelled     EventType = "appointment.cancelled"
	EventAppointmentStatusChanged EventType = "appointment.status_changed"
)

// AppointmentEvent событие изменения записи
type AppointmentEvent struct {
	Type          EventType
	AppointmentID int64
	StylistID     int64
	ServiceID     int64
	Date          time.Time
	StartTime     types.TimeString
	EndTime       types.TimeString
	Status        AppointmentStatus
	Client        ClientInfo
	// ModificationToken передается только в событии booked, чтобы нотификатор мог отправить ссылку
	ModificationToken string
	Reason            *string
	OccurredAt        time.Time
}

// NewAppointmentEvent собирает событие из записи
func NewAppointmentEvent(eventType EventType, a *Appointment, occurredAt time.Time) AppointmentEvent {
	return AppointmentEvent{
		Type:          eventType,
		AppointmentID: a.ID,
		StylistID:     a.StylistID,
		ServiceID:     a.ServiceID,
		Date:          a.Date,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Status:        a.Status,
		Client:        a.Client,
		Reason:        a.CancellationReason,
		OccurredAt:    occurredAt,
	}
}
