package holds

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// HoldRegistry интерфейс реестра резервов
type HoldRegistry interface {
	Get(ctx context.Context, holdID string) (*domain.Hold, error)
	Release(ctx context.Context, holdID string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
