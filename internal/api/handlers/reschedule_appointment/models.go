package reschedule_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	rescheduleAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
}

// RescheduleResponse HTTP response model
type RescheduleResponse struct {
	AppointmentID int64     `json:"appointmentId"`
	StylistID     int64     `json:"stylistId"`
	ServiceID     int64     `json:"serviceId"`
	Date          string    `json:"date"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	Status        string    `json:"status"`
	RescheduledAt time.Time `json:"rescheduledAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleRequest) ToUseCaseRequest(token, sessionID string) (*rescheduleAppointment.Request, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &rescheduleAppointment.Request{
		Token:     token,
		Date:      date,
		StartTime: startTime,
		SessionID: sessionID,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleAppointment.Response) *RescheduleResponse {
	return &RescheduleResponse{
		AppointmentID: resp.AppointmentID,
		StylistID:     resp.StylistID,
		ServiceID:     resp.ServiceID,
		Date:          resp.Date.Format(domain.DateFormat),
		StartTime:     resp.StartTime.String(),
		EndTime:       resp.EndTime.String(),
		Status:        resp.Status,
		RescheduledAt: resp.RescheduledAt,
	}
}
