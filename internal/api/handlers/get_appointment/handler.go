package get_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
)

const msgNotFound = "запись не найдена"

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

// Handle GET /api/v1/appointments/{token}
// Токен в логи не пишется, он дает право изменять запись.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	appt, err := h.service.GetByToken(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /appointments/{token} - Failed to get appointment: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /appointments/{token} - Appointment retrieved: appointment_id=%d", appt.ID)
	handlers.RespondJSON(w, http.StatusOK, appt)
}
