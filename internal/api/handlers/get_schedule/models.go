package get_schedule

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getSchedule "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_schedule"
)

// ScheduleResponse HTTP response model
type ScheduleResponse struct {
	StylistID       int64         `json:"stylistId"`
	ServiceID       *int64        `json:"serviceId,omitempty"`
	DurationMinutes int           `json:"durationMinutes,omitempty"`
	Granularity     int           `json:"granularityMinutes"`
	Days            []DayResponse `json:"days"`
}

// DayResponse слоты на одну дату
type DayResponse struct {
	Date           string         `json:"date"`
	IsWorking      bool           `json:"isWorking"`
	AvailableCount int            `json:"availableCount"`
	Slots          []SlotResponse `json:"slots"`
}

type SlotResponse struct {
	StartTime string `json:"startTime"`
	Available bool   `json:"available"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getSchedule.Response) *ScheduleResponse {
	out := &ScheduleResponse{
		StylistID:       resp.StylistID,
		ServiceID:       resp.ServiceID,
		DurationMinutes: resp.DurationMinutes,
		Granularity:     resp.Granularity,
		Days:            make([]DayResponse, 0, len(resp.Days)),
	}

	for i := range resp.Days {
		day := &resp.Days[i]
		slots := make([]SlotResponse, 0, len(day.Slots))
		for _, s := range day.Slots {
			slots = append(slots, SlotResponse{StartTime: s.StartTime.String(), Available: s.Available})
		}
		out.Days = append(out.Days, DayResponse{
			Date:           day.Date.Format(domain.DateFormat),
			IsWorking:      day.IsWorking,
			AvailableCount: day.AvailableCount(),
			Slots:          slots,
		})
	}

	return out
}
