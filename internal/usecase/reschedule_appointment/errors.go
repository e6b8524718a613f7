package reschedule_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается для неизвестного токена
	ErrAppointmentNotFound = errors.New("reschedule_appointment: appointment not found")

	// ErrModificationForbidden возвращается, когда запись завершена или окно изменения закрыто
	ErrModificationForbidden = errors.New("reschedule_appointment: appointment can no longer be modified")

	// ErrStylistNotFound возвращается, когда мастер больше не доступен для записи
	ErrStylistNotFound = errors.New("reschedule_appointment: stylist not found")

	// ErrServiceNotFound возвращается, когда услуга записи пропала из каталога
	ErrServiceNotFound = errors.New("reschedule_appointment: service not found")

	// ErrInvalidWorkingHours возвращается, когда у мастера некорректное расписание
	ErrInvalidWorkingHours = errors.New("reschedule_appointment: invalid working hours")

	// ErrInvalidDate возвращается для даты в прошлом
	ErrInvalidDate = errors.New("reschedule_appointment: invalid date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("reschedule_appointment: date is too far in the future")

	// ErrStylistNotWorking возвращается, когда мастер не работает в новую дату
	ErrStylistNotWorking = errors.New("reschedule_appointment: stylist is not working on this date")

	// ErrInvalidTimeSlot возвращается, когда время не совпадает с сеткой слотов
	ErrInvalidTimeSlot = errors.New("reschedule_appointment: invalid time slot")

	// ErrTooLateToBook возвращается при нарушении minBookingNoticeMinutes
	ErrTooLateToBook = errors.New("reschedule_appointment: too late to book this slot")

	// ErrSlotNotAvailable возвращается, когда новый интервал занят
	ErrSlotNotAvailable = errors.New("reschedule_appointment: slot is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_appointment: internal error")
)
