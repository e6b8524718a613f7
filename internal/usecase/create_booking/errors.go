package create_booking

import "errors"

var (
	// ErrHoldNotFound возвращается, когда резерв неизвестен, истек или принадлежит другой сессии
	ErrHoldNotFound = errors.New("create_booking: hold not found")

	// ErrStylistNotFound возвращается, когда мастер больше не доступен для записи
	ErrStylistNotFound = errors.New("create_booking: stylist not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrInvalidWorkingHours возвращается, когда у мастера некорректное расписание
	ErrInvalidWorkingHours = errors.New("create_booking: invalid working hours")

	// ErrInvalidDate возвращается, когда дата резерва уже в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrTooLateToBook возвращается при нарушении minBookingNoticeMinutes
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrSlotNotAvailable возвращается, когда интервал больше не свободен
	// (изменились рабочие часы, занят записью или чужим резервом)
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
