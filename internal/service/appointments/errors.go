package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена (в том числе по неверному токену)
	ErrAppointmentNotFound = errors.New("appointments: appointment not found")

	// ErrModificationForbidden возвращается, когда клиент больше не может менять запись
	ErrModificationForbidden = errors.New("appointments: appointment can no longer be modified")

	// ErrAccessDenied возвращается, когда мастер не может управлять записями другого мастера
	ErrAccessDenied = errors.New("appointments: access denied")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = errors.New("appointments: status transition not allowed")

	// ErrInvalidStatus возвращается при неизвестном статусе
	ErrInvalidStatus = errors.New("appointments: invalid status")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("appointments: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("appointments: internal error")
)
