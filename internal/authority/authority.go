package authority

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// TokenBytes энтропия токена изменения записи (256 бит)
const TokenBytes = 32

var (
	// ErrTerminalStatus возвращается при попытке изменить завершенную запись
	ErrTerminalStatus = errors.New("authority: appointment is in a terminal status")

	// ErrTooLate возвращается, когда до начала записи осталось меньше окна уведомления
	ErrTooLate = errors.New("authority: modification window has closed")

	// ErrTransitionNotAllowed возвращается при недопустимом переходе статуса
	ErrTransitionNotAllowed = errors.New("authority: status transition not allowed")

	// ErrMalformedToken возвращается для строки, которая не может быть токеном
	ErrMalformedToken = errors.New("authority: malformed token")
)

// transitions допустимые переходы статусов
var transitions = map[domain.AppointmentStatus][]domain.AppointmentStatus{
	domain.StatusScheduled: {
		domain.StatusConfirmed,
		domain.StatusRescheduled,
		domain.StatusCancelled,
		domain.StatusCompleted,
		domain.StatusNoShow,
	},
	domain.StatusConfirmed: {
		domain.StatusRescheduled,
		domain.StatusCancelled,
		domain.StatusCompleted,
		domain.StatusNoShow,
	},
	domain.StatusRescheduled: {
		domain.StatusConfirmed,
		domain.StatusRescheduled,
		domain.StatusCancelled,
		domain.StatusCompleted,
		domain.StatusNoShow,
	},
}

// Authority решает, может ли владелец токена изменить запись
type Authority struct {
	notice time.Duration
}

// New создает Authority с минимальным временем до начала записи, после которого клиент не может её менять
func New(notice time.Duration) *Authority {
	return &Authority{notice: notice}
}

// Notice окно уведомления
func (a *Authority) Notice() time.Duration {
	return a.notice
}

// CanModify возвращает true, если клиент может перенести или отменить запись в момент now
func (a *Authority) CanModify(appt *domain.Appointment, now time.Time) bool {
	return a.CheckModify(appt, now) == nil
}

// CheckModify как CanModify, но возвращает причину отказа.
// Решение зависит от текущего времени и пересчитывается на каждый запрос.
func (a *Authority) CheckModify(appt *domain.Appointment, now time.Time) error {
	if appt.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTerminalStatus, appt.Status)
	}
	if appt.StartsAt().Sub(now) < a.notice {
		return fmt.Errorf("%w: changes are allowed until %s before the appointment", ErrTooLate, a.notice)
	}
	return nil
}

// CanTransition проверяет переход статуса from -> to
func CanTransition(from, to domain.AppointmentStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CheckTransition как CanTransition, но с ошибкой
func CheckTransition(from, to domain.AppointmentStatus) error {
	if from.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTerminalStatus, from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
	}
	return nil
}

// NewToken генерирует токен изменения записи и его хеш для хранения
func NewToken() (token string, hash string, err error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(buf)
	return token, HashToken(token), nil
}

// HashToken хеш токена, по которому ищется запись
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateToken проверяет формат токена до похода в хранилище
func ValidateToken(token string) error {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != TokenBytes {
		return ErrMalformedToken
	}
	return nil
}
