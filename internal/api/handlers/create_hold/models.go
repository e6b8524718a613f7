package create_hold

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createHold "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_hold"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// CreateHoldRequest HTTP request model
type CreateHoldRequest struct {
	StylistID int64  `json:"stylistId"`
	ServiceID int64  `json:"serviceId"`
	Date      string `json:"date"`      // "2025-10-15"
	StartTime string `json:"startTime"` // "10:00"
}

// HoldResponse HTTP response model
type HoldResponse struct {
	HoldID    string    `json:"holdId"`
	StylistID int64     `json:"stylistId"`
	ServiceID int64     `json:"serviceId"`
	Date      string    `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateHoldRequest) ToUseCaseRequest(sessionID string) (*createHold.Request, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createHold.Request{
		SessionID: sessionID,
		StylistID: r.StylistID,
		ServiceID: r.ServiceID,
		Date:      date,
		StartTime: startTime,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createHold.Response) *HoldResponse {
	return &HoldResponse{
		HoldID:    resp.HoldID,
		StylistID: resp.StylistID,
		ServiceID: resp.ServiceID,
		Date:      resp.Date.Format(domain.DateFormat),
		StartTime: resp.StartTime.String(),
		EndTime:   resp.EndTime.String(),
		ExpiresAt: resp.ExpiresAt,
	}
}
