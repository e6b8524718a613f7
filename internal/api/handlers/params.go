package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ErrMissingParam возвращается, когда обязательный параметр не передан
var ErrMissingParam = errors.New("missing parameter")

// PathInt64 извлекает положительный int64 из переменной пути
func PathInt64(r *http.Request, name string) (int64, error) {
	return parsePositive(mux.Vars(r)[name])
}

// QueryInt64 извлекает необязательный положительный int64 из query параметра
func QueryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := parsePositive(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// QueryDate извлекает дату в формате YYYY-MM-DD в локальной зоне сервиса
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseDate парсит дату записи. Дни считаются в локальной зоне сервиса.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(domain.DateFormat, s, time.Local)
}

func parsePositive(raw string) (int64, error) {
	if raw == "" {
		return 0, ErrMissingParam
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errors.New("must be positive")
	}
	return v, nil
}
