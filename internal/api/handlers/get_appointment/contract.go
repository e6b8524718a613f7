package get_appointment

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

type AppointmentService interface {
	GetByToken(ctx context.Context, token string) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
