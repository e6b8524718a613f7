package create_booking

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на подтверждение записи по резерву
type Request struct {
	SessionID string            // Сессия, владеющая резервом
	HoldID    string            // ID резерва
	ClientID  *int64            // ID клиента во внешней системе (опционально)
	Client    domain.ClientInfo // Данные клиента
	Notes     *string           // Комментарий к записи (опционально)
}

// Response модель ответа с созданной записью
type Response struct {
	AppointmentID int64
	// ModificationToken возвращается только здесь; в БД хранится его хеш
	ModificationToken string
	StylistID         int64
	ServiceID         int64
	Date              time.Time
	StartTime         types.TimeString
	EndTime           types.TimeString
	DurationMinutes   int
	Status            string
	DepositRequired   bool
	DepositAmount     *float64
	CreatedAt         time.Time
}
