package slotpolicy

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var (
	// ErrDateInPast возвращается для даты раньше сегодняшней
	ErrDateInPast = errors.New("slotpolicy: date is in the past")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("slotpolicy: date is too far in the future")

	// ErrNotWorking возвращается, когда мастер не работает в эту дату
	ErrNotWorking = errors.New("slotpolicy: stylist is not working on this date")

	// ErrInvalidTimeSlot возвращается, когда время не совпадает с тиком рабочего окна
	ErrInvalidTimeSlot = errors.New("slotpolicy: start time is not on the slot grid")

	// ErrTooLateToBook возвращается, когда начало раньше now + minBookingNotice
	ErrTooLateToBook = errors.New("slotpolicy: too late to book this slot")

	// ErrSlotNotAvailable возвращается, когда услуга не помещается с выбранного времени
	ErrSlotNotAvailable = errors.New("slotpolicy: slot is not available")
)

// Policy правила записи из конфигурации
type Policy struct {
	GranularityMinutes      int
	MinBookingNoticeMinutes int
	AdvanceBookingDays      int // 0 = без ограничения
}

// ValidateDate проверяет, что дата не в прошлом и не дальше advanceBookingDays
func (p Policy) ValidateDate(date, now time.Time) error {
	day := domain.DateOnly(date)
	today := domain.DateOnly(now)

	if day.Before(today) {
		return ErrDateInPast
	}
	if p.AdvanceBookingDays > 0 && day.After(today.AddDate(0, 0, p.AdvanceBookingDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, p.AdvanceBookingDays)
	}
	return nil
}

// NotBefore возвращает самое раннее допустимое время начала для сегодняшней даты.
// Для других дат nil. Если отсечка уходит за полночь, весь день недоступен.
func (p Policy) NotBefore(date, now time.Time) *types.TimeString {
	if !domain.DateOnly(date).Equal(domain.DateOnly(now)) {
		return nil
	}

	cutoff, err := types.NewTimeString(now).AddMinutes(p.MinBookingNoticeMinutes)
	if err != nil {
		cutoff = types.FromMinutes(types.MinutesPerDay)
	}
	return &cutoff
}

// Options параметры конвейера availability для даты
func (p Policy) Options(date, now time.Time, durationMinutes int) availability.Options {
	return availability.Options{
		Granularity:     p.GranularityMinutes,
		DurationMinutes: durationMinutes,
		NotBefore:       p.NotBefore(date, now),
	}
}

// CheckStart проверяет, что услугу можно начать в start, и возвращает время окончания
func (p Policy) CheckStart(
	window domain.DayWindow,
	busy []domain.Interval,
	date, now time.Time,
	start types.TimeString,
	durationMinutes int,
) (types.TimeString, error) {
	if !window.IsWorking {
		return "", ErrNotWorking
	}

	if !availability.IsOnGrid(window, start, p.GranularityMinutes) {
		return "", fmt.Errorf("%w: %s", ErrInvalidTimeSlot, start)
	}

	if nb := p.NotBefore(date, now); nb != nil && start.IsBefore(*nb) {
		return "", fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, p.MinBookingNoticeMinutes)
	}

	slots, err := availability.GenerateSlots(window, busy, p.GranularityMinutes)
	if err != nil {
		return "", err
	}
	if !availability.CanStartAt(slots, start, durationMinutes, p.GranularityMinutes) {
		return "", ErrSlotNotAvailable
	}

	return availability.EndFor(start, durationMinutes, p.GranularityMinutes)
}

// BusyIntervals собирает занятые интервалы дня: занимающие записи и чужие активные резервы.
// Резервы сессии viewerSession не учитываются.
func BusyIntervals(appointments []*domain.Appointment, holds []*domain.Hold, viewerSession string) []domain.Interval {
	busy := make([]domain.Interval, 0, len(appointments)+len(holds))
	for _, a := range appointments {
		if a.IsOccupying() {
			busy = append(busy, a.Interval())
		}
	}
	for _, h := range holds {
		if h.OwnedBy(viewerSession) {
			continue
		}
		busy = append(busy, h.Interval())
	}
	return busy
}
