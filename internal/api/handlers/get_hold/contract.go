package get_hold

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/holds/models"
)

type HoldService interface {
	Get(ctx context.Context, sessionID, holdID string) (*models.HoldResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
