package get_stylist_appointments

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
)

const (
	msgInvalidStylistID = "некорректный ID мастера"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgInvalidParams    = "некорректные параметры запроса"
	msgForbidden        = "доступ запрещен"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/stylists/{stylistId}/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	stylistID, err := handlers.PathInt64(r, "stylistId")
	if err != nil {
		h.logger.Warn("GET /stylists/{id}/appointments - Invalid stylist ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStylistID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /stylists/{id}/appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	serviceReq, err := ToServiceRequest(r, stylistID, userID)
	if err != nil {
		h.logger.Warn("GET /stylists/{id}/appointments - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.ListStylistAppointments(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("GET /stylists/{id}/appointments - Access denied: stylist_id=%d, user_id=%d", stylistID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, appointments.ErrInvalidInput), errors.Is(err, appointments.ErrInvalidStatus):
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /stylists/{id}/appointments - Failed to list appointments: stylist_id=%d, error=%v",
				stylistID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /stylists/{id}/appointments - Appointments retrieved: stylist_id=%d, count=%d",
		stylistID, len(result.Appointments))
	handlers.RespondJSON(w, http.StatusOK, result)
}
