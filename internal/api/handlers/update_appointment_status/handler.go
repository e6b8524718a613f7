package update_appointment_status

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgNotFound             = "запись не найдена"
	msgForbidden            = "доступ запрещен"
	msgInvalidStatus        = "некорректный статус"
	msgInvalidTransition    = "недопустимая смена статуса"
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

// Handle PATCH /api/v1/appointments/id/{appointmentId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := handlers.PathInt64(r, "appointmentId")
	if err != nil {
		h.logger.Warn("PATCH /appointments/id/{id}/status - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /appointments/id/{id}/status - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/id/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.ActorID = userID

	appt, err := h.service.UpdateStatus(r.Context(), appointmentID, &req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/id/{id}/status - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("PATCH /appointments/id/{id}/status - Access denied: appointment_id=%d, user_id=%d",
				appointmentID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, appointments.ErrInvalidStatus):
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, appointments.ErrInvalidTransition):
			handlers.RespondConflict(w, msgInvalidTransition)

		default:
			h.logger.Error("PATCH /appointments/id/{id}/status - Failed to update status: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/id/{id}/status - Status updated: appointment_id=%d, status=%s, user_id=%d",
		appointmentID, appt.Status, userID)
	handlers.RespondJSON(w, http.StatusOK, appt)
}
