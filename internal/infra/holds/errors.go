package holds

import "errors"

var (
	// ErrNotFound резерв не найден или истек
	ErrNotFound = errors.New("holds: hold not found")

	// ErrConflict интервал уже зарезервирован другой сессией
	ErrConflict = errors.New("holds: interval is held by another session")

	// ErrInternal внутренняя ошибка хранилища резервов
	ErrInternal = errors.New("holds: internal error")
)
