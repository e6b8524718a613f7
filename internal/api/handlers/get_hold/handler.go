package get_hold

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/holds"
)

const (
	msgHoldNotFound = "резерв не найден или истек"
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

// Handle GET /api/v1/holds/{holdId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	holdID := mux.Vars(r)["holdId"]
	sessionID, _ := middleware.GetSessionID(r.Context())

	hold, err := h.service.Get(r.Context(), sessionID, holdID)
	if err != nil {
		switch {
		case errors.Is(err, holds.ErrHoldNotFound):
			handlers.RespondNotFound(w, msgHoldNotFound)

		case errors.Is(err, holds.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /holds/{id} - Failed to get hold: hold_id=%s, error=%v", holdID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, hold)
}
