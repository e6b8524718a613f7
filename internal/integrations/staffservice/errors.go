package staffservice

import "errors"

var (
	// ErrStylistNotFound возвращается, когда мастер не найден в справочнике персонала
	ErrStylistNotFound = errors.New("staffservice: stylist not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("staffservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("staffservice client: invalid response")
)
