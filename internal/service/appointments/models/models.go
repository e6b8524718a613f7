package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// CancelRequest запрос клиента на отмену записи
type CancelRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// UpdateStatusRequest запрос мастера на смену статуса записи
type UpdateStatusRequest struct {
	ActorID int64  `json:"-"` // мастер из X-User-ID
	Status  string `json:"status"`
}

// ListStylistAppointmentsRequest запрос на список записей мастера
type ListStylistAppointmentsRequest struct {
	ActorID         int64      `json:"-"`
	StylistID       int64      `json:"stylistId"`
	From            *time.Time `json:"from,omitempty"`
	To              *time.Time `json:"to,omitempty"`
	Status          *string    `json:"status,omitempty"`
	IncludeInactive bool       `json:"includeInactive,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListStylistAppointmentsRequest) ToDomainFilter() (domain.StylistAppointmentsFilter, error) {
	filter := domain.StylistAppointmentsFilter{
		StylistID:       r.StylistID,
		StartDate:       r.From,
		EndDate:         r.To,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := domain.ParseAppointmentStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// ClientResponse данные клиента
type ClientResponse struct {
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	Email         string            `json:"email"`
	Phone         string            `json:"phone"`
	Questionnaire map[string]string `json:"questionnaire,omitempty"`
}

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              int64          `json:"id"`
	StylistID       int64          `json:"stylistId"`
	ServiceID       int64          `json:"serviceId"`
	ClientID        *int64         `json:"clientId,omitempty"`
	Date            string         `json:"date"`      // "2025-10-15"
	StartTime       string         `json:"startTime"` // "10:00"
	EndTime         string         `json:"endTime"`
	DurationMinutes int            `json:"durationMinutes"`
	Status          string         `json:"status"`
	Client          ClientResponse `json:"client"`
	Notes           *string        `json:"notes,omitempty"`
	DepositRequired bool           `json:"depositRequired"`
	DepositAmount   *float64       `json:"depositAmount,omitempty"`

	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	RescheduledAt      *time.Time `json:"rescheduledAt,omitempty"`

	// Только для доступа по токену
	CanModify       *bool      `json:"canModify,omitempty"`
	ModifiableUntil *time.Time `json:"modifiableUntil,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	return &AppointmentResponse{
		ID:              a.ID,
		StylistID:       a.StylistID,
		ServiceID:       a.ServiceID,
		ClientID:        a.ClientID,
		Date:            a.Date.Format(domain.DateFormat),
		StartTime:       a.StartTime.String(),
		EndTime:         a.EndTime.String(),
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		Client: ClientResponse{
			FirstName:     a.Client.FirstName,
			LastName:      a.Client.LastName,
			Email:         a.Client.Email,
			Phone:         a.Client.Phone,
			Questionnaire: a.Client.Questionnaire,
		},
		Notes:              a.Notes,
		DepositRequired:    a.DepositRequired,
		DepositAmount:      a.DepositAmount,
		CancellationReason: a.CancellationReason,
		CancelledAt:        a.CancelledAt,
		RescheduledAt:      a.RescheduledAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, a := range appointments {
		if r := FromDomainAppointment(a); r != nil {
			resp.Appointments = append(resp.Appointments, *r)
		}
	}

	return resp
}
