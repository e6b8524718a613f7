package get_stylist_appointments

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// Query params: from, to (YYYY-MM-DD), status, includeInactive
func ToServiceRequest(r *http.Request, stylistID, userID int64) (*models.ListStylistAppointmentsRequest, error) {
	req := &models.ListStylistAppointmentsRequest{
		ActorID:   userID,
		StylistID: stylistID,
	}

	from, err := handlers.QueryDate(r, "from")
	if err != nil {
		return nil, fmt.Errorf("invalid from: %w", err)
	}
	to, err := handlers.QueryDate(r, "to")
	if err != nil {
		return nil, fmt.Errorf("invalid to: %w", err)
	}
	req.From, req.To = from, to

	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	if raw := r.URL.Query().Get("includeInactive"); raw != "" {
		includeInactive, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
