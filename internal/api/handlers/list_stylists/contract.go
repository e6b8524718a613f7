package list_stylists

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/stylists"
)

type StylistService interface {
	ListBookable(ctx context.Context) ([]stylists.StylistResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
