package get_schedule

import (
	"context"

	getSchedule "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_schedule"
)

type GetScheduleUseCase interface {
	Execute(ctx context.Context, req *getSchedule.Request) (*getSchedule.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
