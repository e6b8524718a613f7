package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay количество минут в сутках; "24:00" допустимо только как конец интервала
const MinutesPerDay = 24 * 60

var (
	// ErrInvalidTimeString возвращается при некорректном формате времени
	ErrInvalidTimeString = errors.New("invalid time string format")

	// ErrTimeOverflow возвращается, когда время выходит за пределы суток
	ErrTimeOverflow = errors.New("time is out of day range")
)

// TimeString время дня в формате HH:MM (wall-clock, без часового пояса)
type TimeString string

// NewTimeString создает TimeString из time.Time (секунды отбрасываются)
func NewTimeString(t time.Time) TimeString {
	return FromMinutes(t.Hour()*60 + t.Minute())
}

// NewTimeStringFromString парсит строку вида "HH:MM" или "HH:MM:SS"
func NewTimeStringFromString(s string) (TimeString, error) {
	minutes, err := parseMinutes(s)
	if err != nil {
		return "", err
	}
	return FromMinutes(minutes), nil
}

// FromMinutes создает TimeString из количества минут от начала суток
func FromMinutes(minutes int) TimeString {
	return TimeString(fmt.Sprintf("%02d:%02d", minutes/60, minutes%60))
}

// Minutes возвращает количество минут от начала суток.
// Для некорректного значения возвращает -1.
func (t TimeString) Minutes() int {
	minutes, err := parseMinutes(string(t))
	if err != nil {
		return -1
	}
	return minutes
}

// AddMinutes возвращает новое время, сдвинутое на n минут
func (t TimeString) AddMinutes(n int) (TimeString, error) {
	minutes, err := parseMinutes(string(t))
	if err != nil {
		return "", err
	}
	result := minutes + n
	if result < 0 || result > MinutesPerDay {
		return "", fmt.Errorf("%w: %s%+d min", ErrTimeOverflow, t, n)
	}
	return FromMinutes(result), nil
}

// IsBefore возвращает true, если t строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.Minutes() < other.Minutes()
}

// IsAfter возвращает true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.Minutes() > other.Minutes()
}

// Equal сравнивает два значения времени без учета формата записи
func (t TimeString) Equal(other TimeString) bool {
	return t.Minutes() == other.Minutes()
}

// IsZero возвращает true для пустого значения
func (t TimeString) IsZero() bool {
	return t == ""
}

// Validate проверяет формат времени
func (t TimeString) Validate() error {
	_, err := parseMinutes(string(t))
	return err
}

// String реализует fmt.Stringer
func (t TimeString) String() string {
	return string(t)
}

// On возвращает момент времени для даты date в ее часовом поясе
func (t TimeString) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(t.Minutes()) * time.Minute)
}

// Value реализует driver.Valuer (колонка TIME)
func (t TimeString) Value() (driver.Value, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return string(t) + ":00", nil
}

// Scan реализует sql.Scanner
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidTimeString, src)
	}
}

func (t *TimeString) scanString(s string) error {
	parsed, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func parseMinutes(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	if len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	if hours < 0 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	total := hours*60 + minutes
	if total > MinutesPerDay {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	return total, nil
}
