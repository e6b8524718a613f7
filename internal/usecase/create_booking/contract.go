package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	LockStylistDay(ctx context.Context, stylistID int64, date time.Time) error
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	ListOccupying(ctx context.Context, stylistID int64, date time.Time, excludeID int64) ([]*domain.Appointment, error)
}

// HoldRegistry интерфейс реестра резервов
type HoldRegistry interface {
	Get(ctx context.Context, holdID string) (*domain.Hold, error)
	Release(ctx context.Context, holdID string) error
	ListActive(ctx context.Context, stylistID int64, date time.Time) ([]*domain.Hold, error)
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
