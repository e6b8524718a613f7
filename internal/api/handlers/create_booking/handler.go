package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgHoldNotFound        = "резерв не найден или истек"
	msgSlotNotAvailable    = "выбранный временной слот больше недоступен"
	msgStylistNotFound     = "мастер не найден"
	msgServiceNotFound     = "услуга не найдена"
	msgInvalidBookingDate  = "некорректная дата записи"
	msgTooLateToBook       = "слишком поздно для записи на этот слот"
	msgInvalidInput        = "некорректные данные клиента"
	msgScheduleUnavailable = "расписание мастера временно недоступно"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.GetSessionID(r.Context())

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(sessionID))
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrHoldNotFound):
			h.logger.Warn("POST /bookings - Hold not found: hold_id=%s", req.HoldID)
			handlers.RespondNotFound(w, msgHoldNotFound)

		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: hold_id=%s", req.HoldID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrStylistNotFound):
			handlers.RespondNotFound(w, msgStylistNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrInvalidWorkingHours):
			h.logger.Error("POST /bookings - Invalid working hours: hold_id=%s, error=%v", req.HoldID, err)
			handlers.RespondServiceUnavailable(w, msgScheduleUnavailable)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: hold_id=%s, error=%v", req.HoldID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: appointment_id=%d, stylist_id=%d",
		result.AppointmentID, result.StylistID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
