package get_schedule

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса расписания мастера
type Request struct {
	StylistID int64     // ID мастера
	ServiceID *int64    // Услуга для подбора (опционально, без нее - просто свободные тики)
	From      time.Time // Первая дата диапазона
	To        time.Time // Последняя дата диапазона (включительно)
	SessionID string    // Сессия клиента, свои резервы не считаются занятыми (опционально)
}

// Response модель ответа с расписанием
type Response struct {
	StylistID       int64
	ServiceID       *int64
	DurationMinutes int // Длительность услуги, 0 если услуга не указана
	Granularity     int
	Days            []domain.DaySchedule
}
