package get_schedule

import "errors"

var (
	// ErrStylistNotFound возвращается, когда мастер не найден или скрыт от клиентов
	ErrStylistNotFound = errors.New("get_schedule: stylist not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("get_schedule: service not found")

	// ErrInvalidWorkingHours возвращается, когда у мастера некорректное расписание
	ErrInvalidWorkingHours = errors.New("get_schedule: invalid working hours")

	// ErrInvalidDate возвращается для дат в прошлом
	ErrInvalidDate = errors.New("get_schedule: invalid date")

	// ErrDateTooFarInFuture возвращается, когда диапазон выходит за advanceBookingDays
	ErrDateTooFarInFuture = errors.New("get_schedule: date is too far in the future")

	// ErrInvalidRange возвращается при from > to или слишком длинном диапазоне
	ErrInvalidRange = errors.New("get_schedule: invalid date range")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_schedule: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_schedule: internal error")
)
