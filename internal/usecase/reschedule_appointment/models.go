package reschedule_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на перенос записи
type Request struct {
	Token     string           // Токен изменения записи из ссылки
	Date      time.Time        // Новая дата
	StartTime types.TimeString // Новое время начала
	SessionID string           // Сессия клиента, ее резервы не мешают переносу (опционально)
}

// Response модель ответа с перенесенной записью
type Response struct {
	AppointmentID int64
	StylistID     int64
	ServiceID     int64
	Date          time.Time
	StartTime     types.TimeString
	EndTime       types.TimeString
	Status        string
	RescheduledAt time.Time
}
