package reschedule_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	LockStylistDay(ctx context.Context, stylistID int64, date time.Time) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Appointment, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error)
	ListOccupying(ctx context.Context, stylistID int64, date time.Time, excludeID int64) ([]*domain.Appointment, error)
	Reschedule(ctx context.Context, id int64, date time.Time, start, end types.TimeString, at time.Time) error
}

// HoldRegistry интерфейс реестра резервов
type HoldRegistry interface {
	ListActive(ctx context.Context, stylistID int64, date time.Time) ([]*domain.Hold, error)
}

// ModificationAuthority проверяет право клиента изменить запись
type ModificationAuthority interface {
	CheckModify(appt *domain.Appointment, now time.Time) error
	Notice() time.Duration
}

// DayLocker сериализует изменения по ключу (мастер, дата) внутри процесса
type DayLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// StaffServiceClient интерфейс клиента справочника мастеров
type StaffServiceClient interface {
	GetStylist(ctx context.Context, stylistID int64) (*domain.Stylist, error)
}

// CatalogServiceClient интерфейс клиента каталога услуг
type CatalogServiceClient interface {
	GetService(ctx context.Context, serviceID int64) (*domain.Service, error)
}

// EventPublisher интерфейс публикации событий по записям
type EventPublisher interface {
	Publish(ctx context.Context, event domain.AppointmentEvent) error
}

// Metrics интерфейс метрик исходов операций
type Metrics interface {
	RecordBookingOutcome(operation, outcome string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
