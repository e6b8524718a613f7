package reschedule_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	rescheduleAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidDateTime     = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgNotFound            = "запись не найдена"
	msgForbidden           = "запись больше нельзя изменить"
	msgSlotNotAvailable    = "выбранный временной слот недоступен"
	msgStylistNotFound     = "мастер недоступен для записи"
	msgServiceNotFound     = "услуга не найдена"
	msgStylistNotWorking   = "мастер не работает в выбранную дату"
	msgInvalidDate         = "некорректная дата записи"
	msgDateTooFar          = "дата записи слишком далеко в будущем"
	msgInvalidTimeSlot     = "время не совпадает с сеткой слотов"
	msgTooLateToBook       = "слишком поздно для записи на этот слот"
	msgScheduleUnavailable = "расписание мастера временно недоступно"
)

type Handler struct {
	useCase RescheduleUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{token}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	sessionID, _ := middleware.GetSessionID(r.Context())

	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/{token}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(token, sessionID)
	if err != nil {
		h.logger.Warn("POST /appointments/{token}/reschedule - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleAppointment.ErrAppointmentNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleAppointment.ErrModificationForbidden):
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rescheduleAppointment.ErrSlotNotAvailable):
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, rescheduleAppointment.ErrStylistNotWorking):
			handlers.RespondConflict(w, msgStylistNotWorking)

		case errors.Is(err, rescheduleAppointment.ErrStylistNotFound):
			handlers.RespondNotFound(w, msgStylistNotFound)

		case errors.Is(err, rescheduleAppointment.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, rescheduleAppointment.ErrInvalidDate), errors.Is(err, rescheduleAppointment.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, rescheduleAppointment.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, rescheduleAppointment.ErrInvalidTimeSlot):
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, rescheduleAppointment.ErrTooLateToBook):
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, rescheduleAppointment.ErrInvalidWorkingHours):
			h.logger.Error("POST /appointments/{token}/reschedule - Invalid working hours: date=%s, error=%v", req.Date, err)
			handlers.RespondServiceUnavailable(w, msgScheduleUnavailable)

		default:
			h.logger.Error("POST /appointments/{token}/reschedule - Failed to reschedule: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/{token}/reschedule - Appointment rescheduled: appointment_id=%d, date=%s, start=%s",
		result.AppointmentID, req.Date, req.StartTime)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
