package release_hold

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/holds"
)

const (
	msgHoldNotFound = "резерв не найден"
	msgInvalidInput = "некорректный ID резерва"
)

type Handler struct {
	service HoldService
	logger  Logger
}

func NewHandler(service HoldService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/holds/{holdId}
// Повторное освобождение уже снятого резерва возвращает 204.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	holdID := mux.Vars(r)["holdId"]
	sessionID, _ := middleware.GetSessionID(r.Context())

	if err := h.service.Release(r.Context(), sessionID, holdID); err != nil {
		switch {
		case errors.Is(err, holds.ErrHoldNotFound):
			handlers.RespondNotFound(w, msgHoldNotFound)

		case errors.Is(err, holds.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("DELETE /holds/{id} - Failed to release hold: hold_id=%s, error=%v", holdID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /holds/{id} - Hold released: hold_id=%s", holdID)
	handlers.RespondNoContent(w)
}
