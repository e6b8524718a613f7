package get_schedule

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, maxRangeDays int) error {
	if req.StylistID <= 0 {
		return fmt.Errorf("%w: stylistID must be positive", ErrInvalidInput)
	}

	if req.ServiceID != nil && *req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.From.IsZero() || req.To.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrInvalidInput)
	}

	from, to := domain.DateOnly(req.From), domain.DateOnly(req.To)
	if to.Before(from) {
		return fmt.Errorf("%w: from must not be after to", ErrInvalidRange)
	}

	if days := daysBetween(from, to) + 1; maxRangeDays > 0 && days > maxRangeDays {
		return fmt.Errorf("%w: at most %d days per request, got %d", ErrInvalidRange, maxRangeDays, days)
	}

	return nil
}
