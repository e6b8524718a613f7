package availability

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var (
	// ErrInvalidGranularity возвращается при шаге сетки <= 0
	ErrInvalidGranularity = errors.New("availability: granularity must be positive")

	// ErrInvalidDuration возвращается при длительности услуги <= 0
	ErrInvalidDuration = errors.New("availability: duration must be positive")
)

// GenerateSlots разбивает рабочее окно на тики шириной granularity минут.
// Тик t покрывает [t, t+g) и существует, только если t+g <= end: неполный последний тик отбрасывается.
// Тик недоступен, если пересекается с перерывом или с занятым интервалом (интервалы полуоткрытые).
func GenerateSlots(window domain.DayWindow, busy []domain.Interval, granularity int) ([]domain.TimeSlot, error) {
	if granularity <= 0 {
		return nil, ErrInvalidGranularity
	}

	// Шаг 1: Выходной день - пустая последовательность
	if !window.IsWorking {
		return []domain.TimeSlot{}, nil
	}

	start := window.Start.Minutes()
	end := window.End.Minutes()
	if start < 0 || end < 0 {
		return nil, fmt.Errorf("%w: window %s-%s", types.ErrInvalidTimeString, window.Start, window.End)
	}

	// Шаг 2: Перебираем тики от начала до конца окна
	slots := make([]domain.TimeSlot, 0, (end-start)/granularity)
	for t := start; t+granularity <= end; t += granularity {
		tick := domain.Interval{
			Start: types.FromMinutes(t),
			End:   types.FromMinutes(t + granularity),
		}

		// Шаг 3: Тик занят, если пересекается с перерывом или записью/резервом
		available := !overlapsAny(tick, window.Breaks) && !overlapsAny(tick, busy)

		slots = append(slots, domain.TimeSlot{
			StartTime: tick.Start,
			Available: available,
		})
	}

	return slots, nil
}

// BlockBefore помечает недоступными тики, начинающиеся раньше cutoff.
// Используется для сегодняшней даты с учетом минимального времени до записи.
func BlockBefore(slots []domain.TimeSlot, cutoff types.TimeString) []domain.TimeSlot {
	result := make([]domain.TimeSlot, len(slots))
	for i, s := range slots {
		result[i] = s
		if s.StartTime.IsBefore(cutoff) {
			result[i].Available = false
		}
	}
	return result
}

func overlapsAny(tick domain.Interval, intervals []domain.Interval) bool {
	for _, iv := range intervals {
		if tick.Overlaps(iv) {
			return true
		}
	}
	return false
}
