package create_hold

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	createHold "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_hold"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDateTime     = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgSlotNotAvailable    = "выбранный временной слот недоступен"
	msgStylistNotFound     = "мастер не найден"
	msgServiceNotFound     = "услуга не найдена"
	msgStylistNotWorking   = "мастер не работает в выбранную дату"
	msgInvalidDate         = "некорректная дата записи"
	msgDateTooFar          = "дата записи слишком далеко в будущем"
	msgInvalidTimeSlot     = "время не совпадает с сеткой слотов"
	msgTooLateToBook       = "слишком поздно для записи на этот слот"
	msgInvalidInput        = "некорректные данные запроса"
	msgScheduleUnavailable = "расписание мастера временно недоступно"
)

type Handler struct {
	useCase CreateHoldUseCase
	logger  Logger
}

func NewHandler(useCase CreateHoldUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/holds
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())

	var req CreateHoldRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /holds - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(sessionID)
	if err != nil {
		h.logger.Warn("POST /holds - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createHold.ErrSlotNotAvailable):
			h.logger.Warn("POST /holds - Slot not available: stylist_id=%d, date=%s, start=%s",
				req.StylistID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createHold.ErrStylistNotFound):
			handlers.RespondNotFound(w, msgStylistNotFound)

		case errors.Is(err, createHold.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createHold.ErrStylistNotWorking):
			handlers.RespondConflict(w, msgStylistNotWorking)

		case errors.Is(err, createHold.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, createHold.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createHold.ErrInvalidTimeSlot):
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createHold.ErrTooLateToBook):
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createHold.ErrInvalidInput):
			h.logger.Warn("POST /holds - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createHold.ErrInvalidWorkingHours):
			h.logger.Error("POST /holds - Invalid working hours: stylist_id=%d, error=%v", req.StylistID, err)
			handlers.RespondServiceUnavailable(w, msgScheduleUnavailable)

		default:
			h.logger.Error("POST /holds - Failed to create hold: stylist_id=%d, error=%v", req.StylistID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /holds - Hold created: hold_id=%s, stylist_id=%d, date=%s, start=%s",
		result.HoldID, result.StylistID, req.Date, req.StartTime)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
