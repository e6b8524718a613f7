package reschedule_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/authority"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/slotpolicy"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if err := authority.ValidateToken(req.Token); err != nil {
		return ErrAppointmentNotFound
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	return nil
}

// mapPolicyError переводит ошибки правил записи в ошибки use case
func mapPolicyError(err error) error {
	switch {
	case errors.Is(err, slotpolicy.ErrDateInPast):
		return fmt.Errorf("%w: %v", ErrInvalidDate, err)
	case errors.Is(err, slotpolicy.ErrDateTooFarInFuture):
		return fmt.Errorf("%w: %v", ErrDateTooFarInFuture, err)
	case errors.Is(err, slotpolicy.ErrNotWorking):
		return ErrStylistNotWorking
	case errors.Is(err, slotpolicy.ErrInvalidTimeSlot):
		return fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	case errors.Is(err, slotpolicy.ErrTooLateToBook):
		return fmt.Errorf("%w: %v", ErrTooLateToBook, err)
	case errors.Is(err, slotpolicy.ErrSlotNotAvailable):
		return ErrSlotNotAvailable
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
