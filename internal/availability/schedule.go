package availability

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Options параметры расчета дня
type Options struct {
	Granularity     int
	DurationMinutes int               // 0 - без подбора под услугу
	NotBefore       *types.TimeString // тики раньше этого времени недоступны (сегодняшняя дата)
}

// DaySlots собирает полный конвейер: генерация тиков, отсечка по времени, подбор под услугу
func DaySlots(window domain.DayWindow, busy []domain.Interval, opts Options) ([]domain.TimeSlot, error) {
	slots, err := GenerateSlots(window, busy, opts.Granularity)
	if err != nil {
		return nil, err
	}

	if opts.NotBefore != nil {
		slots = BlockBefore(slots, *opts.NotBefore)
	}

	if opts.DurationMinutes > 0 {
		return FitService(slots, opts.DurationMinutes, opts.Granularity)
	}
	return slots, nil
}
