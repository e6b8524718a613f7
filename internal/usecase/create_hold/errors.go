package create_hold

import "errors"

var (
	// ErrStylistNotFound возвращается, когда мастер не найден или недоступен для записи
	ErrStylistNotFound = errors.New("create_hold: stylist not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_hold: service not found")

	// ErrInvalidWorkingHours возвращается, когда у мастера некорректное расписание
	ErrInvalidWorkingHours = errors.New("create_hold: invalid working hours")

	// ErrInvalidDate возвращается для даты в прошлом
	ErrInvalidDate = errors.New("create_hold: invalid date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("create_hold: date is too far in the future")

	// ErrStylistNotWorking возвращается, когда мастер не работает в эту дату
	ErrStylistNotWorking = errors.New("create_hold: stylist is not working on this date")

	// ErrInvalidTimeSlot возвращается, когда время не совпадает с сеткой слотов
	ErrInvalidTimeSlot = errors.New("create_hold: invalid time slot")

	// ErrTooLateToBook возвращается при нарушении minBookingNoticeMinutes
	ErrTooLateToBook = errors.New("create_hold: too late to book this slot")

	// ErrSlotNotAvailable возвращается, когда интервал занят записью или чужим резервом
	ErrSlotNotAvailable = errors.New("create_hold: slot is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_hold: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_hold: internal error")
)
