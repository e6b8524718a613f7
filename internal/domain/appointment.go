package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "scheduled"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusCompleted   AppointmentStatus = "completed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusNoShow      AppointmentStatus = "noShow"
	StatusRescheduled AppointmentStatus = "rescheduled"
)

// ParseAppointmentStatus разбирает статус из строки
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	status := AppointmentStatus(s)
	switch status {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled:
		return status, nil
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

// IsTerminal returns true if the status can no longer change
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// IsOccupying returns true if an appointment in this status blocks its interval
func (s AppointmentStatus) IsOccupying() bool {
	return s == StatusScheduled || s == StatusConfirmed || s == StatusRescheduled
}

// ClientInfo данные клиента из формы записи.
// Клиент не имеет аккаунта, поэтому данные хранятся снимком в самой записи.
type ClientInfo struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	Questionnaire map[string]string
}

// Appointment represents a client appointment with a stylist
type Appointment struct {
	ID              int64
	StylistID       int64
	ServiceID       int64
	ClientID        *int64 // заполняется, если клиент известен внешней системе
	Date            time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	Status          AppointmentStatus

	// TokenHash SHA-256 от токена изменения. Сам токен не хранится.
	TokenHash string

	Client ClientInfo
	Notes  *string

	DepositRequired bool
	DepositAmount   *float64

	CancellationReason *string
	CancelledAt        *time.Time
	RescheduledAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Interval returns the [start, end) interval occupied by the appointment
func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartTime, End: a.EndTime}
}

// StartsAt returns the absolute start moment in the location of Date
func (a *Appointment) StartsAt() time.Time {
	return a.StartTime.On(a.Date)
}

// IsOccupying returns true if the appointment blocks its interval
func (a *Appointment) IsOccupying() bool {
	return a.Status.IsOccupying()
}

// StylistAppointmentsFilter фильтр для получения записей мастера
type StylistAppointmentsFilter struct {
	StylistID       int64              // Обязательный параметр
	StartDate       *time.Time         // Начало периода (включительно)
	EndDate         *time.Time         // Конец периода (включительно)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли отмененные и завершенные записи
}
