package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// HoldResponse ответ с данными резерва
type HoldResponse struct {
	HoldID    string    `json:"holdId"`
	StylistID int64     `json:"stylistId"`
	ServiceID int64     `json:"serviceId"`
	Date      string    `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FromDomainHold конвертирует domain модель в DTO
func FromDomainHold(h *domain.Hold) *HoldResponse {
	if h == nil {
		return nil
	}
	return &HoldResponse{
		HoldID:    h.ID,
		StylistID: h.StylistID,
		ServiceID: h.ServiceID,
		Date:      h.Date.Format(domain.DateFormat),
		StartTime: h.StartTime.String(),
		EndTime:   h.EndTime.String(),
		ExpiresAt: h.ExpiresAt,
	}
}
