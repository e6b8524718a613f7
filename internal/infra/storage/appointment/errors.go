package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrSlotTaken возвращается, когда интервал уже занят другой записью (exclusion constraint)
	ErrSlotTaken = errors.New("appointment.repository: interval overlaps another appointment")

	// ErrDuplicateToken возвращается при повторе хеша токена
	ErrDuplicateToken = errors.New("appointment.repository: duplicate modification token")

	// ErrNoTransaction возвращается, когда операция требует транзакцию в контексте
	ErrNoTransaction = errors.New("appointment.repository: transaction required")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
