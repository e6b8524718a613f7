package domain

import "github.com/m04kA/SMC-AppointmentService/pkg/types"

// Interval полуоткрытый интервал времени [Start, End) в пределах одного дня
type Interval struct {
	Start types.TimeString
	End   types.TimeString
}

// Overlaps проверяет пересечение интервалов.
// Интервалы, которые только граничат (a.End == b.Start), не пересекаются.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.IsBefore(other.End) && other.Start.IsBefore(i.End)
}

// Contains проверяет, что other целиком лежит внутри i
func (i Interval) Contains(other Interval) bool {
	return !other.Start.IsBefore(i.Start) && !other.End.IsAfter(i.End)
}

// DurationMinutes длительность интервала в минутах
func (i Interval) DurationMinutes() int {
	return i.End.Minutes() - i.Start.Minutes()
}

// Validate проверяет формат границ и Start < End
func (i Interval) Validate() error {
	if err := i.Start.Validate(); err != nil {
		return err
	}
	if err := i.End.Validate(); err != nil {
		return err
	}
	if !i.Start.IsBefore(i.End) {
		return ErrEmptyInterval
	}
	return nil
}
