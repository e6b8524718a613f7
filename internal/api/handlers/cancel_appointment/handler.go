package cancel_appointment

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "запись не найдена"
	msgForbidden          = "запись больше нельзя отменить"
	msgInvalidInput       = "некорректные данные запроса"
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

// Handle POST /api/v1/appointments/{token}/cancel
// Тело опционально: {"reason": "..."}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	var req models.CancelRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /appointments/{token}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	appt, err := h.service.CancelByToken(r.Context(), token, &req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrModificationForbidden):
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, appointments.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments/{token}/cancel - Failed to cancel appointment: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/{token}/cancel - Appointment cancelled: appointment_id=%d", appt.ID)
	handlers.RespondJSON(w, http.StatusOK, appt)
}
