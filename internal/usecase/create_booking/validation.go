package create_booking

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/slotpolicy"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if _, err := uuid.Parse(req.SessionID); err != nil {
		return fmt.Errorf("%w: sessionID must be a UUID", ErrInvalidInput)
	}

	if _, err := uuid.Parse(req.HoldID); err != nil {
		return fmt.Errorf("%w: holdID must be a UUID", ErrInvalidInput)
	}

	if req.ClientID != nil && *req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if err := validateClient(req.Client); err != nil {
		return err
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateClient проверяет данные клиента: имя, фамилия, email и телефон обязательны
func validateClient(c domain.ClientInfo) error {
	fields := []struct {
		name  string
		value string
	}{
		{"firstName", c.FirstName},
		{"lastName", c.LastName},
		{"email", c.Email},
		{"phone", c.Phone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: client.%s is required", ErrInvalidInput, f.name)
		}
		if len(f.value) > domain.MaxClientFieldLength {
			return fmt.Errorf("%w: client.%s must be at most %d characters", ErrInvalidInput, f.name, domain.MaxClientFieldLength)
		}
	}

	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: client.email is invalid", ErrInvalidInput)
	}

	if len(c.Questionnaire) > domain.MaxQuestionnaireEntries {
		return fmt.Errorf("%w: questionnaire must have at most %d entries", ErrInvalidInput, domain.MaxQuestionnaireEntries)
	}

	return nil
}

// mapPolicyError переводит ошибки правил записи в ошибки use case.
// Любая причина, по которой резерв больше нельзя подтвердить в его интервале, - это конфликт.
func mapPolicyError(err error) error {
	switch {
	case errors.Is(err, slotpolicy.ErrDateInPast):
		return fmt.Errorf("%w: %v", ErrInvalidDate, err)
	case errors.Is(err, slotpolicy.ErrTooLateToBook):
		return fmt.Errorf("%w: %v", ErrTooLateToBook, err)
	case errors.Is(err, slotpolicy.ErrNotWorking),
		errors.Is(err, slotpolicy.ErrInvalidTimeSlot),
		errors.Is(err, slotpolicy.ErrSlotNotAvailable):
		return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
