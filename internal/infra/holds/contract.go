package holds

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Registry хранилище временных резервов.
// Истекшие резервы не видны ни одному методу чтения.
type Registry interface {
	// Acquire сохраняет резерв. Предыдущий резерв той же сессии снимается.
	// Возвращает ErrConflict, если интервал пересекается с активным резервом другой сессии.
	Acquire(ctx context.Context, hold *domain.Hold) error
	// Get возвращает активный резерв или ErrNotFound
	Get(ctx context.Context, holdID string) (*domain.Hold, error)
	// Release снимает резерв. Неизвестный или уже снятый id - не ошибка.
	Release(ctx context.Context, holdID string) error
	// ListActive возвращает активные резервы мастера на дату, упорядоченные по началу
	ListActive(ctx context.Context, stylistID int64, date time.Time) ([]*domain.Hold, error)
	// Sweep удаляет истекшие резервы и возвращает их количество
	Sweep(ctx context.Context) (int, error)
	// Count количество активных резервов
	Count(ctx context.Context) (int, error)
}

// Clock источник текущего времени
type Clock interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock системные часы
var RealClock Clock = realClock{}
