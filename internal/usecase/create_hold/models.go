package create_hold

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на резерв слота
type Request struct {
	SessionID string           // Сессия клиента (X-Session-ID)
	StylistID int64            // ID мастера
	ServiceID int64            // ID услуги
	Date      time.Time        // Дата записи (без времени)
	StartTime types.TimeString // Время начала, должно совпадать с тиком
}

// Response модель ответа с созданным резервом
type Response struct {
	HoldID    string
	StylistID int64
	ServiceID int64
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
	ExpiresAt time.Time
}
