package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/authority"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	staffClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/staffservice"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

// Service сервис для работы с существующими записями: доступ клиента по токену и управление мастером
type Service struct {
	appointmentRepo AppointmentRepository
	staffClient     StaffServiceClient
	authority       ModificationAuthority
	publisher       EventPublisher
	txManager       TransactionManager
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	staffClient StaffServiceClient,
	authority ModificationAuthority,
	publisher EventPublisher,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		staffClient:     staffClient,
		authority:       authority,
		publisher:       publisher,
		txManager:       txManager,
		metrics:         metrics,
		timeProvider:    realTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByToken возвращает запись по токену изменения и признак, можно ли ее сейчас изменить
func (s *Service) GetByToken(ctx context.Context, token string) (*models.AppointmentResponse, error) {
	appt, err := s.findByToken(ctx, "GetByToken", token)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	resp := models.FromDomainAppointment(appt)
	resp.CanModify = ptr.Ptr(s.authority.CanModify(appt, now))
	if !appt.Status.IsTerminal() {
		resp.ModifiableUntil = ptr.Ptr(appt.StartsAt().Add(-s.authority.Notice()))
	}

	s.logger.Info("GetByToken: appointment id=%d, status=%s, canModify=%t", appt.ID, appt.Status, *resp.CanModify)
	return resp, nil
}

// CancelByToken отменяет запись по запросу клиента.
// Окно изменения проверяется на момент запроса под блокировкой строки.
func (s *Service) CancelByToken(ctx context.Context, token string, req *models.CancelRequest) (*models.AppointmentResponse, error) {
	if err := authority.ValidateToken(token); err != nil {
		s.logger.Warn("CancelByToken: malformed token")
		return nil, ErrAppointmentNotFound
	}
	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	now := s.timeProvider.Now()
	var result *domain.Appointment

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// В транзакции репозиторий читает запись с FOR UPDATE
		appt, err := s.findByToken(txCtx, "CancelByToken", token)
		if err != nil {
			return err
		}

		if err := s.authority.CheckModify(appt, now); err != nil {
			s.logger.Warn("CancelByToken: appointment id=%d cannot be modified: %v", appt.ID, err)
			return fmt.Errorf("%w: %v", ErrModificationForbidden, err)
		}
		if err := authority.CheckTransition(appt.Status, domain.StatusCancelled); err != nil {
			return fmt.Errorf("%w: %v", ErrModificationForbidden, err)
		}

		if err := s.appointmentRepo.Cancel(txCtx, appt.ID, req.Reason, now); err != nil {
			s.logger.Error("CancelByToken: repository error for appointment id=%d: %v", appt.ID, err)
			return fmt.Errorf("%w: CancelByToken - repository error: %v", ErrInternal, err)
		}

		appt.Status = domain.StatusCancelled
		appt.CancellationReason = req.Reason
		appt.CancelledAt = &now
		appt.UpdatedAt = now
		result = appt
		return nil
	})
	s.metrics.RecordBookingOutcome("cancel", outcomeOf(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("CancelByToken: cancelled appointment id=%d", result.ID)
	s.publish(ctx, domain.EventAppointmentCancelled, result, now)

	return models.FromDomainAppointment(result), nil
}

// UpdateStatus меняет статус записи по запросу мастера.
// Мастер управляет своими записями, владелец салона - записями всех мастеров.
// Окно изменения для персонала не действует, только допустимость перехода.
func (s *Service) UpdateStatus(ctx context.Context, appointmentID int64, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: appointment id=%d to status=%s by stylist=%d", appointmentID, req.Status, req.ActorID)

	newStatus, err := domain.ParseAppointmentStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s", req.Status)
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, req.Status)
	}
	if newStatus == domain.StatusRescheduled || newStatus == domain.StatusScheduled {
		// перенос меняет время и идет через отдельный сценарий с проверкой занятости
		return nil, fmt.Errorf("%w: status %s cannot be set directly", ErrInvalidStatus, newStatus)
	}

	actor, err := s.getActor(ctx, "UpdateStatus", req.ActorID)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	var result *domain.Appointment

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		appt, err := s.appointmentRepo.GetByIDForUpdate(txCtx, appointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				s.logger.Warn("UpdateStatus: appointment id=%d not found", appointmentID)
				return ErrAppointmentNotFound
			}
			s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", appointmentID, err)
			return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}

		if !actor.CanManage(appt.StylistID) {
			s.logger.Warn("UpdateStatus: stylist=%d cannot manage appointment id=%d", actor.ID, appointmentID)
			return ErrAccessDenied
		}

		if err := authority.CheckTransition(appt.Status, newStatus); err != nil {
			s.logger.Warn("UpdateStatus: appointment id=%d: %v", appointmentID, err)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, newStatus)
		}

		if newStatus == domain.StatusCancelled {
			err = s.appointmentRepo.Cancel(txCtx, appt.ID, nil, now)
			appt.CancelledAt = &now
		} else {
			err = s.appointmentRepo.UpdateStatus(txCtx, appt.ID, newStatus, now)
		}
		if err != nil {
			s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", appointmentID, err)
			return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}

		appt.Status = newStatus
		appt.UpdatedAt = now
		result = appt
		return nil
	})
	s.metrics.RecordBookingOutcome("status_update", outcomeOf(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateStatus: appointment id=%d is now %s", result.ID, result.Status)

	eventType := domain.EventAppointmentStatusChanged
	if result.Status == domain.StatusCancelled {
		eventType = domain.EventAppointmentCancelled
	}
	s.publish(ctx, eventType, result, now)

	return models.FromDomainAppointment(result), nil
}

// ListStylistAppointments получает записи мастера за период
func (s *Service) ListStylistAppointments(ctx context.Context, req *models.ListStylistAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListStylistAppointments: stylist=%d by stylist=%d", req.StylistID, req.ActorID)

	if req.StylistID <= 0 {
		return nil, fmt.Errorf("%w: stylistID must be positive", ErrInvalidInput)
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, fmt.Errorf("%w: from must not be after to", ErrInvalidInput)
	}

	actor, err := s.getActor(ctx, "ListStylistAppointments", req.ActorID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(req.StylistID) {
		s.logger.Warn("ListStylistAppointments: stylist=%d cannot view stylist=%d", actor.ID, req.StylistID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}

	list, err := s.appointmentRepo.ListByStylist(ctx, filter)
	if err != nil {
		s.logger.Error("ListStylistAppointments: repository error for stylist=%d: %v", req.StylistID, err)
		return nil, fmt.Errorf("%w: ListStylistAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListStylistAppointments: fetched %d appointments for stylist=%d", len(list), req.StylistID)
	return models.FromDomainAppointmentList(list), nil
}

// Вспомогательные методы

// findByToken ищет запись по хешу токена; неверный токен неотличим от неизвестного
func (s *Service) findByToken(ctx context.Context, op, token string) (*domain.Appointment, error) {
	if err := authority.ValidateToken(token); err != nil {
		s.logger.Warn("%s: malformed token", op)
		return nil, ErrAppointmentNotFound
	}

	appt, err := s.appointmentRepo.GetByTokenHash(ctx, authority.HashToken(token))
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: unknown token", op)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error: %v", op, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appt, nil
}

// getActor получает активного мастера, выполняющего запрос
func (s *Service) getActor(ctx context.Context, op string, actorID int64) (*domain.Stylist, error) {
	if actorID <= 0 {
		return nil, ErrAccessDenied
	}

	actor, err := s.staffClient.GetStylist(ctx, actorID)
	if err != nil {
		if errors.Is(err, staffClient.ErrStylistNotFound) {
			s.logger.Warn("%s: actor stylist=%d not found", op, actorID)
			return nil, ErrAccessDenied
		}
		s.logger.Error("%s: failed to get actor stylist=%d: %v", op, actorID, err)
		return nil, fmt.Errorf("%w: %s - failed to get stylist: %v", ErrInternal, op, err)
	}
	if !actor.IsActive {
		s.logger.Warn("%s: actor stylist=%d is inactive", op, actorID)
		return nil, ErrAccessDenied
	}
	return actor, nil
}

func (s *Service) publish(ctx context.Context, eventType domain.EventType, appt *domain.Appointment, at time.Time) {
	if err := s.publisher.Publish(ctx, domain.NewAppointmentEvent(eventType, appt, at)); err != nil {
		s.logger.Error("publish: failed to publish %s for appointment id=%d: %v", eventType, appt.ID, err)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInternal):
		return "error"
	default:
		return "rejected"
	}
}
