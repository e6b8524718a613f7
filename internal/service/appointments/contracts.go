package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Appointment, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error)
	ListByStylist(ctx context.Context, filter domain.StylistAppointmentsFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, at time.Time) error
	Cancel(ctx context.Context, id int64, reason *string, at time.Time) error
}

// StaffServiceClient интерфейс клиента справочника мастеров
type StaffServiceClient interface {
	GetStylist(ctx context.Context, stylistID int64) (*domain.Stylist, error)
}

// ModificationAuthority политика изменения записи клиентом
type ModificationAuthority interface {
	CanModify(appt *domain.Appointment, now time.Time) bool
	CheckModify(appt *domain.Appointment, now time.Time) error
	Notice() time.Duration
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
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now() }
