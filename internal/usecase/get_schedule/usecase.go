package get_schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	catalogClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/catalogservice"
	staffClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/staffservice"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/slotpolicy"
)

// UseCase use case для получения расписания мастера.
// Только чтение: блокировки дня не берутся.
type UseCase struct {
	appointmentRepo AppointmentRepository
	holds           HoldRegistry
	staffClient     StaffServiceClient
	catalogClient   CatalogServiceClient
	policy          slotpolicy.Policy
	maxRangeDays    int
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	holds HoldRegistry,
	staffClient StaffServiceClient,
	catalogClient CatalogServiceClient,
	policy slotpolicy.Policy,
	maxRangeDays int,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		holds:           holds,
		staffClient:     staffClient,
		catalogClient:   catalogClient,
		policy:          policy,
		maxRangeDays:    maxRangeDays,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения расписания
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetSchedule: stylist=%d, from=%s, to=%s, service=%v",
		req.StylistID, req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat), req.ServiceID)

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.maxRangeDays); err != nil {
		uc.logger.Warn("GetSchedule: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()
	from, to := domain.DateOnly(req.From), domain.DateOnly(req.To)

	// 3. Проверяем границы диапазона
	if err := uc.validateRange(from, to, now); err != nil {
		uc.logger.Warn("GetSchedule: range validation failed: %v", err)
		return nil, err
	}

	// 4. Получаем мастера
	stylist, err := uc.staffClient.GetStylist(ctx, req.StylistID)
	if err != nil {
		if errors.Is(err, staffClient.ErrStylistNotFound) {
			uc.logger.Warn("GetSchedule: stylist id=%d not found", req.StylistID)
			return nil, ErrStylistNotFound
		}
		uc.logger.Error("GetSchedule: failed to get stylist id=%d: %v", req.StylistID, err)
		return nil, fmt.Errorf("%w: failed to get stylist: %v", ErrInternal, err)
	}
	if !stylist.IsBookable() {
		uc.logger.Warn("GetSchedule: stylist id=%d is not bookable", req.StylistID)
		return nil, ErrStylistNotFound
	}
	if err := stylist.WorkingHours.Validate(); err != nil {
		uc.logger.Warn("GetSchedule: stylist id=%d has invalid working hours: %v", req.StylistID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkingHours, err)
	}

	// 5. Получаем услугу, если нужен подбор по длительности
	duration := 0
	if req.ServiceID != nil {
		service, err := uc.catalogClient.GetService(ctx, *req.ServiceID)
		if err != nil {
			if errors.Is(err, catalogClient.ErrServiceNotFound) {
				uc.logger.Warn("GetSchedule: service id=%d not found", *req.ServiceID)
				return nil, ErrServiceNotFound
			}
			uc.logger.Error("GetSchedule: failed to get service id=%d: %v", *req.ServiceID, err)
			return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}
		duration = service.DurationMinutes
	}

	// 6. Собираем расписание по дням
	days := make([]domain.DaySchedule, 0, daysBetween(from, to)+1)
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		day, err := uc.buildDay(ctx, stylist, date, now, duration, req.SessionID)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}

	uc.logger.Info("GetSchedule: built %d days for stylist=%d", len(days), req.StylistID)

	return &Response{
		StylistID:       req.StylistID,
		ServiceID:       req.ServiceID,
		DurationMinutes: duration,
		Granularity:     uc.policy.GranularityMinutes,
		Days:            days,
	}, nil
}

// buildDay вычисляет слоты одной даты
func (uc *UseCase) buildDay(
	ctx context.Context,
	stylist *domain.Stylist,
	date, now time.Time,
	duration int,
	sessionID string,
) (domain.DaySchedule, error) {
	result := domain.DaySchedule{Date: date, StylistID: stylist.ID}

	window := availability.ResolveDay(stylist.WorkingHours, date)
	if !window.IsWorking {
		result.Slots = []domain.TimeSlot{}
		return result, nil
	}
	result.IsWorking = true

	appointments, err := uc.appointmentRepo.ListOccupying(ctx, stylist.ID, date, 0)
	if err != nil {
		uc.logger.Error("GetSchedule: failed to list appointments for %s: %v", domain.DayKey(stylist.ID, date), err)
		return result, fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}

	holds, err := uc.holds.ListActive(ctx, stylist.ID, date)
	if err != nil {
		uc.logger.Error("GetSchedule: failed to list holds for %s: %v", domain.DayKey(stylist.ID, date), err)
		return result, fmt.Errorf("%w: failed to list holds: %v", ErrInternal, err)
	}

	busy := slotpolicy.BusyIntervals(appointments, holds, sessionID)
	slots, err := availability.DaySlots(window, busy, uc.policy.Options(date, now, duration))
	if err != nil {
		return result, fmt.Errorf("%w: failed to build slots: %v", ErrInternal, err)
	}

	result.Slots = slots
	return result, nil
}

// validateRange проверяет диапазон относительно текущей даты
func (uc *UseCase) validateRange(from, to, now time.Time) error {
	if err := uc.policy.ValidateDate(from, now); err != nil {
		if errors.Is(err, slotpolicy.ErrDateInPast) {
			return fmt.Errorf("%w: from %s is in the past", ErrInvalidDate, from.Format(domain.DateFormat))
		}
		return fmt.Errorf("%w: %v", ErrDateTooFarInFuture, err)
	}
	if err := uc.policy.ValidateDate(to, now); err != nil {
		return fmt.Errorf("%w: %v", ErrDateTooFarInFuture, err)
	}
	return nil
}

// daysBetween количество полных дней между датами
func daysBetween(from, to time.Time) int {
	// через UTC, чтобы переход на летнее время не съедал день
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
