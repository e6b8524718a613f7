package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/authority"
	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	catalogClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/catalogservice"
	staffClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/staffservice"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/slotpolicy"
)

const operation = "reschedule"

// UseCase use case для переноса записи клиентом по токену
type UseCase struct {
	appointmentRepo AppointmentRepository
	holds           HoldRegistry
	authority       ModificationAuthority
	locker          DayLocker
	staffClient     StaffServiceClient
	catalogClient   CatalogServiceClient
	publisher       EventPublisher
	txManager       TransactionManager
	policy          slotpolicy.Policy
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	holds HoldRegistry,
	authority ModificationAuthority,
	locker DayLocker,
	staffClient StaffServiceClient,
	catalogClient CatalogServiceClient,
	publisher EventPublisher,
	txManager TransactionManager,
	policy slotpolicy.Policy,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		holds:           holds,
		authority:       authority,
		locker:          locker,
		staffClient:     staffClient,
		catalogClient:   catalogClient,
		publisher:       publisher,
		txManager:       txManager,
		policy:          policy,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case переноса записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.RecordBookingOutcome(operation, outcomeOf(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: date=%s, time=%s", req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Находим запись по токену и проверяем окно изменения
	now := uc.timeProvider.Now()
	tokenHash := authority.HashToken(req.Token)
	current, err := uc.appointmentRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("RescheduleAppointment: unknown token")
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("RescheduleAppointment: failed to get appointment by token: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}
	if err := uc.checkModifiable(current, now); err != nil {
		return nil, err
	}

	// 3. Проверяем новую дату
	newDate := domain.DateOnly(req.Date)
	if err := uc.policy.ValidateDate(newDate, now); err != nil {
		uc.logger.Warn("RescheduleAppointment: date validation failed: %v", err)
		return nil, mapPolicyError(err)
	}
	// Новое время тоже должно оставаться вне окна запрета изменений
	if notice := uc.authority.Notice(); req.StartTime.On(newDate).Sub(now) < notice {
		uc.logger.Warn("RescheduleAppointment: new start %s %s is within %s modification notice",
			newDate.Format(domain.DateFormat), req.StartTime, notice)
		return nil, fmt.Errorf("%w: new time must be at least %s ahead", ErrTooLateToBook, notice)
	}

	// 4. Получаем мастера и услугу записи
	stylist, err := uc.staffClient.GetStylist(ctx, current.StylistID)
	if err != nil {
		if errors.Is(err, staffClient.ErrStylistNotFound) {
			uc.logger.Warn("RescheduleAppointment: stylist id=%d not found", current.StylistID)
			return nil, ErrStylistNotFound
		}
		uc.logger.Error("RescheduleAppointment: failed to get stylist id=%d: %v", current.StylistID, err)
		return nil, fmt.Errorf("%w: failed to get stylist: %v", ErrInternal, err)
	}
	if !stylist.IsBookable() {
		uc.logger.Warn("RescheduleAppointment: stylist id=%d is not bookable", current.StylistID)
		return nil, ErrStylistNotFound
	}
	if err := stylist.WorkingHours.Validate(); err != nil {
		uc.logger.Warn("RescheduleAppointment: stylist id=%d has invalid working hours: %v", current.StylistID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkingHours, err)
	}

	service, err := uc.catalogClient.GetService(ctx, current.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("RescheduleAppointment: service id=%d not found", current.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("RescheduleAppointment: failed to get service id=%d: %v", current.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 5. Блокируем новый день мастера; освобождение старого интервала блокировки не требует
	dayKey := domain.DayKey(stylist.ID, newDate)
	unlock, err := uc.locker.Lock(ctx, dayKey)
	if err != nil {
		uc.logger.Warn("RescheduleAppointment: lock %s aborted: %v", dayKey, err)
		return nil, fmt.Errorf("%w: lock aborted: %v", ErrInternal, err)
	}
	defer unlock()

	var result *domain.Appointment

	// 6. Повторная проверка и перенос в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Блокировка дня между экземплярами сервиса
		if err := uc.appointmentRepo.LockStylistDay(txCtx, stylist.ID, newDate); err != nil {
			uc.logger.Error("RescheduleAppointment: failed to lock %s: %v", dayKey, err)
			return fmt.Errorf("%w: failed to lock day: %v", ErrInternal, err)
		}

		// 6.2. Перечитываем запись с блокировкой строки и снова проверяем право изменения
		appt, err := uc.appointmentRepo.GetByIDForUpdate(txCtx, current.ID)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to lock appointment id=%d: %v", current.ID, err)
			return fmt.Errorf("%w: failed to lock appointment: %v", ErrInternal, err)
		}
		if err := uc.checkModifiable(appt, now); err != nil {
			return err
		}

		// 6.3. Занятость нового дня без самой переносимой записи
		appointments, err := uc.appointmentRepo.ListOccupying(txCtx, stylist.ID, newDate, appt.ID)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to list appointments for %s: %v", dayKey, err)
			return fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
		}
		active, err := uc.holds.ListActive(txCtx, stylist.ID, newDate)
		if err != nil {
			uc.logger.Error("RescheduleAppointment: failed to list holds for %s: %v", dayKey, err)
			return fmt.Errorf("%w: failed to list holds: %v", ErrInternal, err)
		}
		busy := slotpolicy.BusyIntervals(appointments, active, req.SessionID)

		// 6.4. Подбор по текущим рабочим часам
		window := availability.ResolveDay(stylist.WorkingHours, newDate)
		endTime, err := uc.policy.CheckStart(window, busy, newDate, now, req.StartTime, service.DurationMinutes)
		if err != nil {
			uc.logger.Warn("RescheduleAppointment: slot %s %s rejected: %v", dayKey, req.StartTime, err)
			return mapPolicyError(err)
		}

		// 6.5. Переносим
		if err := uc.appointmentRepo.Reschedule(txCtx, appt.ID, newDate, req.StartTime, endTime, now); err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotTaken) {
				uc.logger.Warn("RescheduleAppointment: slot %s %s taken concurrently", dayKey, req.StartTime)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("RescheduleAppointment: failed to reschedule id=%d: %v", appt.ID, err)
			return fmt.Errorf("%w: failed to reschedule: %v", ErrInternal, err)
		}

		appt.Date = newDate
		appt.StartTime = req.StartTime
		appt.EndTime = endTime
		appt.Status = domain.StatusRescheduled
		appt.RescheduledAt = &now
		appt.UpdatedAt = now
		result = appt
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("RescheduleAppointment: appointment id=%d moved to %s %s-%s",
		result.ID, dayKey, result.StartTime, result.EndTime)

	// 7. Публикуем событие для нотификатора
	if err := uc.publisher.Publish(ctx, domain.NewAppointmentEvent(domain.EventAppointmentRescheduled, result, now)); err != nil {
		uc.logger.Error("RescheduleAppointment: failed to publish event for appointment id=%d: %v", result.ID, err)
	}

	return &Response{
		AppointmentID: result.ID,
		StylistID:     result.StylistID,
		ServiceID:     result.ServiceID,
		Date:          result.Date,
		StartTime:     result.StartTime,
		EndTime:       result.EndTime,
		Status:        string(result.Status),
		RescheduledAt: now,
	}, nil
}

// checkModifiable проверяет окно изменения и допустимость перехода в rescheduled
func (uc *UseCase) checkModifiable(appt *domain.Appointment, now time.Time) error {
	if err := uc.authority.CheckModify(appt, now); err != nil {
		uc.logger.Warn("RescheduleAppointment: appointment id=%d cannot be modified: %v", appt.ID, err)
		return fmt.Errorf("%w: %v", ErrModificationForbidden, err)
	}
	if err := authority.CheckTransition(appt.Status, domain.StatusRescheduled); err != nil {
		uc.logger.Warn("RescheduleAppointment: appointment id=%d: %v", appt.ID, err)
		return fmt.Errorf("%w: %v", ErrModificationForbidden, err)
	}
	return nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrSlotNotAvailable):
		return "conflict"
	case errors.Is(err, ErrInternal):
		return "error"
	default:
		return "rejected"
	}
}
