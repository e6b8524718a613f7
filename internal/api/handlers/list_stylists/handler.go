package list_stylists

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

type Handler struct {
	service StylistService
	logger  Logger
}

func NewHandler(service StylistService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/stylists
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListBookable(r.Context())
	if err != nil {
		h.logger.Error("GET /stylists - Failed to list stylists: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /stylists - Stylists retrieved: count=%d", len(list))
	handlers.RespondJSON(w, http.StatusOK, list)
}
