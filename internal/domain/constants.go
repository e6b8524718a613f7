package domain

import "errors"

// Default configuration values
const (
	DefaultGranularityMinutes        = 15
	DefaultMinBookingNoticeMinutes   = 60
	DefaultModificationNoticeMinutes = 24 * 60
	DefaultAdvanceBookingDays        = 90
)

// Business validation constants
const (
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxClientFieldLength        = 255
	MaxQuestionnaireEntries     = 50
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// OccupyingStatuses статусы записей, занимающих интервал мастера
var OccupyingStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusRescheduled,
}

// TerminalStatuses статусы, после которых запись не меняется
var TerminalStatuses = []AppointmentStatus{
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

var (
	// ErrInvalidWorkingHours возвращается при некорректном расписании мастера
	ErrInvalidWorkingHours = errors.New("domain: invalid working hours")

	// ErrEmptyInterval возвращается, когда начало интервала не раньше конца
	ErrEmptyInterval = errors.New("domain: interval start must be before end")
)
