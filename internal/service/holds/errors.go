package holds

import "errors"

var (
	// ErrHoldNotFound возвращается, когда резерв принадлежит другой сессии
	ErrHoldNotFound = errors.New("holds: hold not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("holds: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("holds: internal error")
)
