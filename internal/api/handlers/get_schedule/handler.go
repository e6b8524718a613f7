package get_schedule

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	getSchedule "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_schedule"
)

const (
	msgInvalidStylistID    = "некорректный ID мастера"
	msgInvalidServiceID    = "некорректный ID услуги"
	msgMissingRange        = "параметры from и to обязательны"
	msgInvalidDate         = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidRange        = "некорректный диапазон дат"
	msgDateInPast          = "дата в прошлом"
	msgDateTooFar          = "дата слишком далеко в будущем"
	msgStylistNotFound     = "мастер не найден"
	msgServiceNotFound     = "услуга не найдена"
	msgScheduleUnavailable = "расписание мастера временно недоступно"
)

type Handler struct {
	useCase GetScheduleUseCase
	logger  Logger
}

func NewHandler(useCase GetScheduleUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/stylists/{stylistId}/schedule
// Query params: from, to (required, YYYY-MM-DD), serviceId (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	stylistID, err := handlers.PathInt64(r, "stylistId")
	if err != nil {
		h.logger.Warn("GET /stylists/{id}/schedule - Invalid stylist ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStylistID)
		return
	}

	serviceID, err := handlers.QueryInt64(r, "serviceId")
	if err != nil {
		h.logger.Warn("GET /stylists/{id}/schedule - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	from, errFrom := handlers.QueryDate(r, "from")
	to, errTo := handlers.QueryDate(r, "to")
	if errFrom != nil || errTo != nil {
		h.logger.Warn("GET /stylists/{id}/schedule - Invalid date: from=%v, to=%v", errFrom, errTo)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	if from == nil || to == nil {
		handlers.RespondBadRequest(w, msgMissingRange)
		return
	}

	// Свои резервы клиент видит свободными, чтобы мог выбрать слот заново
	sessionID, _ := middleware.GetSessionID(r.Context())

	result, err := h.useCase.Execute(r.Context(), &getSchedule.Request{
		StylistID: stylistID,
		ServiceID: serviceID,
		From:      *from,
		To:        *to,
		SessionID: sessionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, getSchedule.ErrStylistNotFound):
			h.logger.Warn("GET /stylists/{id}/schedule - Stylist not found: stylist_id=%d", stylistID)
			handlers.RespondNotFound(w, msgStylistNotFound)

		case errors.Is(err, getSchedule.ErrServiceNotFound):
			h.logger.Warn("GET /stylists/{id}/schedule - Service not found: stylist_id=%d", stylistID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getSchedule.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, getSchedule.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getSchedule.ErrInvalidRange), errors.Is(err, getSchedule.ErrInvalidInput):
			h.logger.Warn("GET /stylists/{id}/schedule - Invalid range: stylist_id=%d, error=%v", stylistID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		case errors.Is(err, getSchedule.ErrInvalidWorkingHours):
			h.logger.Error("GET /stylists/{id}/schedule - Invalid working hours: stylist_id=%d, error=%v", stylistID, err)
			handlers.RespondServiceUnavailable(w, msgScheduleUnavailable)

		default:
			h.logger.Error("GET /stylists/{id}/schedule - Failed to get schedule: stylist_id=%d, error=%v", stylistID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /stylists/{id}/schedule - Schedule retrieved: stylist_id=%d, days=%d", stylistID, len(result.Days))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
