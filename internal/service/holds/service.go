package holds

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	holdRegistry "github.com/m04kA/SMC-AppointmentService/internal/infra/holds"
	"github.com/m04kA/SMC-AppointmentService/internal/service/holds/models"
)

// Service сервис для чтения и снятия резервов сессией-владельцем
type Service struct {
	registry HoldRegistry
	logger   Logger
}

// NewService создает новый экземпляр сервиса резервов
func NewService(registry HoldRegistry, logger Logger) *Service {
	return &Service{
		registry: registry,
		logger:   logger,
	}
}

// Get возвращает активный резерв сессии
func (s *Service) Get(ctx context.Context, sessionID, holdID string) (*models.HoldResponse, error) {
	if err := validateIDs(sessionID, holdID); err != nil {
		return nil, err
	}

	hold, err := s.registry.Get(ctx, holdID)
	if err != nil {
		if errors.Is(err, holdRegistry.ErrNotFound) {
			return nil, ErrHoldNotFound
		}
		s.logger.Error("Get: registry error for hold id=%s: %v", holdID, err)
		return nil, fmt.Errorf("%w: Get - registry error: %v", ErrInternal, err)
	}
	if !hold.OwnedBy(sessionID) {
		s.logger.Warn("Get: hold id=%s belongs to another session", holdID)
		return nil, ErrHoldNotFound
	}

	return models.FromDomainHold(hold), nil
}

// Release снимает резерв.
// Неизвестный или истекший резерв - не ошибка; чужой резерв снять нельзя.
func (s *Service) Release(ctx context.Context, sessionID, holdID string) error {
	s.logger.Info("Release: hold id=%s by session=%s", holdID, sessionID)

	if err := validateIDs(sessionID, holdID); err != nil {
		return err
	}

	hold, err := s.registry.Get(ctx, holdID)
	if err != nil {
		if errors.Is(err, holdRegistry.ErrNotFound) {
			s.logger.Info("Release: hold id=%s already gone", holdID)
			return nil
		}
		s.logger.Error("Release: registry error for hold id=%s: %v", holdID, err)
		return fmt.Errorf("%w: Release - registry error: %v", ErrInternal, err)
	}
	if !hold.OwnedBy(sessionID) {
		s.logger.Warn("Release: hold id=%s belongs to another session", holdID)
		return ErrHoldNotFound
	}

	if err := s.registry.Release(ctx, holdID); err != nil {
		s.logger.Error("Release: registry error for hold id=%s: %v", holdID, err)
		return fmt.Errorf("%w: Release - registry error: %v", ErrInternal, err)
	}

	s.logger.Info("Release: hold id=%s released", holdID)
	return nil
}

func validateIDs(sessionID, holdID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("%w: sessionID must be a UUID", ErrInvalidInput)
	}
	if _, err := uuid.Parse(holdID); err != nil {
		return fmt.Errorf("%w: holdID must be a UUID", ErrInvalidInput)
	}
	return nil
}
