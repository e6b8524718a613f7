package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/authority"
	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/holds"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	catalogClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/catalogservice"
	staffClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/staffservice"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/slotpolicy"
)

const operation = "commit"

// UseCase use case для подтверждения записи по резерву
type UseCase struct {
	appointmentRepo AppointmentRepository
	holds           HoldRegistry
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

// Execute выполняет use case подтверждения записи.
// Все проверки повторяются под блокировкой дня мастера: резерв не гарантирует, что
// рабочие часы или занятость не изменились с момента его создания.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.RecordBookingOutcome(operation, outcomeOf(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: session=%s, hold=%s", req.SessionID, req.HoldID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем резерв, чтобы узнать день для блокировки
	hold, err := uc.getOwnedHold(ctx, req.HoldID, req.SessionID)
	if err != nil {
		return nil, err
	}

	// 3. Получаем услугу
	service, err := uc.catalogClient.GetService(ctx, hold.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", hold.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", hold.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 4. Блокируем день мастера в процессе
	dayKey := domain.DayKey(hold.StylistID, hold.Date)
	unlock, err := uc.locker.Lock(ctx, dayKey)
	if err != nil {
		uc.logger.Warn("CreateBooking: lock %s aborted: %v", dayKey, err)
		return nil, fmt.Errorf("%w: lock aborted: %v", ErrInternal, err)
	}
	defer unlock()

	// 5. Перечитываем резерв под блокировкой: он мог истечь пока ждали
	hold, err = uc.getOwnedHold(ctx, req.HoldID, req.SessionID)
	if err != nil {
		return nil, err
	}

	// 6. Перечитываем мастера: рабочие часы могли измениться после создания резерва
	stylist, err := uc.staffClient.GetStylist(ctx, hold.StylistID)
	if err != nil {
		if errors.Is(err, staffClient.ErrStylistNotFound) {
			uc.logger.Warn("CreateBooking: stylist id=%d not found", hold.StylistID)
			return nil, ErrStylistNotFound
		}
		uc.logger.Error("CreateBooking: failed to get stylist id=%d: %v", hold.StylistID, err)
		return nil, fmt.Errorf("%w: failed to get stylist: %v", ErrInternal, err)
	}
	if !stylist.IsBookable() {
		uc.logger.Warn("CreateBooking: stylist id=%d is not bookable", hold.StylistID)
		return nil, ErrStylistNotFound
	}
	if err := stylist.WorkingHours.Validate(); err != nil {
		uc.logger.Warn("CreateBooking: stylist id=%d has invalid working hours: %v", hold.StylistID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkingHours, err)
	}

	now := uc.timeProvider.Now()
	token, tokenHash, err := authority.NewToken()
	if err != nil {
		uc.logger.Error("CreateBooking: failed to generate token: %v", err)
		return nil, fmt.Errorf("%w: failed to generate token: %v", ErrInternal, err)
	}

	var result *domain.Appointment

	// 7. Выполняем проверку и запись в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 7.1. Блокировка дня между экземплярами сервиса
		if err := uc.appointmentRepo.LockStylistDay(txCtx, hold.StylistID, hold.Date); err != nil {
			uc.logger.Error("CreateBooking: failed to lock %s: %v", dayKey, err)
			return fmt.Errorf("%w: failed to lock day: %v", ErrInternal, err)
		}

		// 7.2. Дата и отсечка по времени на момент подтверждения
		if err := uc.policy.ValidateDate(hold.Date, now); errors.Is(err, slotpolicy.ErrDateInPast) {
			uc.logger.Warn("CreateBooking: hold date %s is in the past", hold.Date.Format(domain.DateFormat))
			return mapPolicyError(err)
		}

		// 7.3. Текущая занятость: записи и чужие резервы
		appointments, err := uc.appointmentRepo.ListOccupying(txCtx, hold.StylistID, hold.Date, 0)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to list appointments for %s: %v", dayKey, err)
			return fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
		}
		active, err := uc.holds.ListActive(txCtx, hold.StylistID, hold.Date)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to list holds for %s: %v", dayKey, err)
			return fmt.Errorf("%w: failed to list holds: %v", ErrInternal, err)
		}
		busy := slotpolicy.BusyIntervals(appointments, active, req.SessionID)

		// 7.4. Повторный подбор по текущим рабочим часам
		window := availability.ResolveDay(stylist.WorkingHours, hold.Date)
		endTime, err := uc.policy.CheckStart(window, busy, hold.Date, now, hold.StartTime, service.DurationMinutes)
		if err != nil {
			uc.logger.Warn("CreateBooking: slot %s %s rejected: %v", dayKey, hold.StartTime, err)
			return mapPolicyError(err)
		}

		// 7.5. Создаем запись
		appt := &domain.Appointment{
			StylistID:       hold.StylistID,
			ServiceID:       service.ID,
			ClientID:        req.ClientID,
			Date:            hold.Date,
			StartTime:       hold.StartTime,
			EndTime:         endTime,
			DurationMinutes: service.DurationMinutes,
			Status:          domain.StatusScheduled,
			TokenHash:       tokenHash,
			Client:          req.Client,
			Notes:           req.Notes,
		}
		if service.DepositPolicy != nil && service.DepositPolicy.Required {
			appt.DepositRequired = true
			amount := service.DepositPolicy.Amount
			appt.DepositAmount = &amount
		}

		created, err := uc.appointmentRepo.Create(txCtx, appt)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotTaken) {
				uc.logger.Warn("CreateBooking: slot %s %s taken concurrently", dayKey, hold.StartTime)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("CreateBooking: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: created appointment id=%d for %s %s-%s",
		result.ID, dayKey, result.StartTime, result.EndTime)

	// 8. Снимаем резерв; при ошибке он истечет сам
	if err := uc.holds.Release(ctx, hold.ID); err != nil {
		uc.logger.Warn("CreateBooking: failed to release hold id=%s: %v", hold.ID, err)
	}

	// 9. Публикуем событие для нотификатора, запись уже сохранена
	event := domain.NewAppointmentEvent(domain.EventAppointmentBooked, result, now)
	event.ModificationToken = token
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Error("CreateBooking: failed to publish event for appointment id=%d: %v", result.ID, err)
	}

	return &Response{
		AppointmentID:     result.ID,
		ModificationToken: token,
		StylistID:         result.StylistID,
		ServiceID:         result.ServiceID,
		Date:              result.Date,
		StartTime:         result.StartTime,
		EndTime:           result.EndTime,
		DurationMinutes:   result.DurationMinutes,
		Status:            string(result.Status),
		DepositRequired:   result.DepositRequired,
		DepositAmount:     result.DepositAmount,
		CreatedAt:         result.CreatedAt,
	}, nil
}

// getOwnedHold возвращает активный резерв сессии.
// Чужой резерв неотличим от несуществующего.
func (uc *UseCase) getOwnedHold(ctx context.Context, holdID, sessionID string) (*domain.Hold, error) {
	hold, err := uc.holds.Get(ctx, holdID)
	if err != nil {
		if errors.Is(err, holds.ErrNotFound) {
			uc.logger.Warn("CreateBooking: hold id=%s not found or expired", holdID)
			return nil, ErrHoldNotFound
		}
		uc.logger.Error("CreateBooking: failed to get hold id=%s: %v", holdID, err)
		return nil, fmt.Errorf("%w: failed to get hold: %v", ErrInternal, err)
	}
	if !hold.OwnedBy(sessionID) {
		uc.logger.Warn("CreateBooking: hold id=%s belongs to another session", holdID)
		return nil, ErrHoldNotFound
	}
	return hold, nil
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
