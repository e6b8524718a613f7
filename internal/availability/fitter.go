package availability

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// TicksFor количество тиков, нужное услуге: ceil(duration / granularity)
func TicksFor(durationMinutes, granularity int) int {
	return (durationMinutes + granularity - 1) / granularity
}

// FitService оставляет доступными только тики, с которых начинается
// непрерывная серия из TicksFor(duration) свободных тиков (включая сам тик).
// Возвращает новый срез, исходный не меняется.
func FitService(slots []domain.TimeSlot, durationMinutes, granularity int) ([]domain.TimeSlot, error) {
	if granularity <= 0 {
		return nil, ErrInvalidGranularity
	}
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	need := TicksFor(durationMinutes, granularity)
	result := make([]domain.TimeSlot, len(slots))

	// run[i] - длина серии свободных подряд идущих тиков, начиная с i
	run := 0
	for i := len(slots) - 1; i >= 0; i-- {
		switch {
		case !slots[i].Available:
			run = 0
		case i+1 < len(slots) && slots[i+1].StartTime.Minutes()-slots[i].StartTime.Minutes() != granularity:
			// разрыв в сетке: следующий тик не продолжает текущий
			run = 1
		default:
			run++
		}

		result[i] = domain.TimeSlot{
			StartTime: slots[i].StartTime,
			Available: slots[i].Available && run >= need,
		}
	}

	return result, nil
}

// CanStartAt проверяет, что услуга длительностью durationMinutes может начаться в start
func CanStartAt(slots []domain.TimeSlot, start types.TimeString, durationMinutes, granularity int) bool {
	fitted, err := FitService(slots, durationMinutes, granularity)
	if err != nil {
		return false
	}
	for _, s := range fitted {
		if s.StartTime.Equal(start) {
			return s.Available
		}
	}
	return false
}

// IsOnGrid проверяет, что start совпадает с одним из тиков рабочего окна
func IsOnGrid(window domain.DayWindow, start types.TimeString, granularity int) bool {
	if !window.IsWorking || granularity <= 0 {
		return false
	}
	s := start.Minutes()
	if s < 0 {
		return false
	}
	offset := s - window.Start.Minutes()
	return offset >= 0 && offset%granularity == 0 && s+granularity <= window.End.Minutes()
}

// EndFor время окончания услуги, округленное вверх до целого числа тиков
func EndFor(start types.TimeString, durationMinutes, granularity int) (types.TimeString, error) {
	return start.AddMinutes(TicksFor(durationMinutes, granularity) * granularity)
}
