package create_booking

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	HoldID   string        `json:"holdId"`
	ClientID *int64        `json:"clientId,omitempty"`
	Client   ClientRequest `json:"client"`
	Notes    *string       `json:"notes,omitempty"`
}

// ClientRequest контактные данные и анкета клиента
type ClientRequest struct {
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	Email         string            `json:"email"`
	Phone         string            `json:"phone"`
	Questionnaire map[string]string `json:"questionnaire,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	AppointmentID     int64    `json:"appointmentId"`
	ModificationToken string   `json:"modificationToken"`
	StylistID         int64    `json:"stylistId"`
	ServiceID         int64    `json:"serviceId"`
	Date              string   `json:"date"`
	StartTime         string   `json:"startTime"`
	EndTime           string   `json:"endTime"`
	DurationMinutes   int      `json:"durationMinutes"`
	Status            string   `json:"status"`
	DepositRequired   bool     `json:"depositRequired"`
	DepositAmount     *float64 `json:"depositAmount,omitempty"`
	CreatedAt         string   `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(sessionID string) *createBooking.Request {
	return &createBooking.Request{
		SessionID: sessionID,
		HoldID:    r.HoldID,
		ClientID:  r.ClientID,
		Client: domain.ClientInfo{
			FirstName:     r.Client.FirstName,
			LastName:      r.Client.LastName,
			Email:         r.Client.Email,
			Phone:         r.Client.Phone,
			Questionnaire: r.Client.Questionnaire,
		},
		Notes: r.Notes,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		AppointmentID:     resp.AppointmentID,
		ModificationToken: resp.ModificationToken,
		StylistID:         resp.StylistID,
		ServiceID:         resp.ServiceID,
		Date:              resp.Date.Format(domain.DateFormat),
		StartTime:         resp.StartTime.String(),
		EndTime:           resp.EndTime.String(),
		DurationMinutes:   resp.DurationMinutes,
		Status:            resp.Status,
		DepositRequired:   resp.DepositRequired,
		DepositAmount:     resp.DepositAmount,
		CreatedAt:         resp.CreatedAt.Format(time.RFC3339),
	}
}
