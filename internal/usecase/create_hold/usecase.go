package create_hold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/holds"
	catalogClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/catalogservice"
	staffClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/staffservice"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/slotpolicy"
)

const operation = "hold"

// UseCase use case для резерва слота на время заполнения формы
type UseCase struct {
	appointmentRepo AppointmentRepository
	holds           HoldRegistry
	locker          DayLocker
	staffClient     StaffServiceClient
	catalogClient   CatalogServiceClient
	policy          slotpolicy.Policy
	ttl             time.Duration
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
	policy slotpolicy.Policy,
	ttl time.Duration,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		holds:           holds,
		locker:          locker,
		staffClient:     staffClient,
		catalogClient:   catalogClient,
		policy:          policy,
		ttl:             ttl,
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

// Execute выполняет use case резерва.
// Резерв не создает запись: он только скрывает интервал от других сессий до истечения TTL.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.RecordBookingOutcome(operation, outcomeOf(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateHold: session=%s, stylist=%d, service=%d, date=%s, time=%s",
		req.SessionID, req.StylistID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateHold: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время и проверяем дату
	now := uc.timeProvider.Now()
	date := domain.DateOnly(req.Date)
	if err := uc.policy.ValidateDate(date, now); err != nil {
		uc.logger.Warn("CreateHold: date validation failed: %v", err)
		return nil, mapPolicyError(err)
	}

	// 3. Получаем мастера и услугу
	stylist, err := uc.staffClient.GetStylist(ctx, req.StylistID)
	if err != nil {
		if errors.Is(err, staffClient.ErrStylistNotFound) {
			uc.logger.Warn("CreateHold: stylist id=%d not found", req.StylistID)
			return nil, ErrStylistNotFound
		}
		uc.logger.Error("CreateHold: failed to get stylist id=%d: %v", req.StylistID, err)
		return nil, fmt.Errorf("%w: failed to get stylist: %v", ErrInternal, err)
	}
	if !stylist.IsBookable() {
		uc.logger.Warn("CreateHold: stylist id=%d is not bookable", req.StylistID)
		return nil, ErrStylistNotFound
	}
	if err := stylist.WorkingHours.Validate(); err != nil {
		uc.logger.Warn("CreateHold: stylist id=%d has invalid working hours: %v", req.StylistID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkingHours, err)
	}

	service, err := uc.catalogClient.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateHold: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateHold: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 4. Блокируем день мастера в процессе
	dayKey := domain.DayKey(stylist.ID, date)
	unlock, err := uc.locker.Lock(ctx, dayKey)
	if err != nil {
		uc.logger.Warn("CreateHold: lock %s aborted: %v", dayKey, err)
		return nil, fmt.Errorf("%w: lock aborted: %v", ErrInternal, err)
	}
	defer unlock()

	// 5. Собираем занятость: записи и чужие резервы
	appointments, err := uc.appointmentRepo.ListOccupying(ctx, stylist.ID, date, 0)
	if err != nil {
		uc.logger.Error("CreateHold: failed to list appointments for %s: %v", dayKey, err)
		return nil, fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}
	active, err := uc.holds.ListActive(ctx, stylist.ID, date)
	if err != nil {
		uc.logger.Error("CreateHold: failed to list holds for %s: %v", dayKey, err)
		return nil, fmt.Errorf("%w: failed to list holds: %v", ErrInternal, err)
	}
	busy := slotpolicy.BusyIntervals(appointments, active, req.SessionID)

	// 6. Проверяем, что услуга помещается с выбранного времени
	window := availability.ResolveDay(stylist.WorkingHours, date)
	endTime, err := uc.policy.CheckStart(window, busy, date, now, req.StartTime, service.DurationMinutes)
	if err != nil {
		uc.logger.Warn("CreateHold: slot %s %s rejected: %v", dayKey, req.StartTime, err)
		return nil, mapPolicyError(err)
	}

	// 7. Сохраняем резерв; предыдущий резерв сессии снимается реестром
	hold := &domain.Hold{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		StylistID: stylist.ID,
		ServiceID: service.ID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   endTime,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.holds.Acquire(ctx, hold); err != nil {
		if errors.Is(err, holds.ErrConflict) {
			uc.logger.Warn("CreateHold: slot %s %s taken by another session", dayKey, req.StartTime)
			return nil, ErrSlotNotAvailable
		}
		uc.logger.Error("CreateHold: failed to acquire hold: %v", err)
		return nil, fmt.Errorf("%w: failed to acquire hold: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateHold: hold id=%s for %s %s-%s until %s",
		hold.ID, dayKey, hold.StartTime, hold.EndTime, hold.ExpiresAt.Format(time.RFC3339))

	return &Response{
		HoldID:    hold.ID,
		StylistID: hold.StylistID,
		ServiceID: hold.ServiceID,
		Date:      hold.Date,
		StartTime: hold.StartTime,
		EndTime:   hold.EndTime,
		ExpiresAt: hold.ExpiresAt,
	}, nil
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
