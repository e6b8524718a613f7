package stylists

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ErrInternal возвращается при внутренних ошибках сервиса
var ErrInternal = errors.New("stylists: internal error")

// StaffServiceClient интерфейс клиента справочника мастеров
type StaffServiceClient interface {
	GetActiveStylists(ctx context.Context) ([]*domain.Stylist, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// StylistResponse мастер, доступный для записи
type StylistResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Service сервис каталога мастеров для клиентов
type Service struct {
	staffClient StaffServiceClient
	logger      Logger
}

// NewService создает новый экземпляр сервиса
func NewService(staffClient StaffServiceClient, logger Logger) *Service {
	return &Service{staffClient: staffClient, logger: logger}
}

// ListBookable возвращает активных мастеров, видимых клиентам, упорядоченных по имени
func (s *Service) ListBookable(ctx context.Context) ([]StylistResponse, error) {
	list, err := s.staffClient.GetActiveStylists(ctx)
	if err != nil {
		s.logger.Error("ListBookable: failed to get stylists: %v", err)
		return nil, fmt.Errorf("%w: ListBookable - staff service error: %v", ErrInternal, err)
	}

	result := make([]StylistResponse, 0, len(list))
	for _, st := range list {
		if st.IsBookable() {
			result = append(result, StylistResponse{ID: st.ID, Name: st.Name})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})

	s.logger.Info("ListBookable: %d bookable stylists", len(result))
	return result, nil
}
