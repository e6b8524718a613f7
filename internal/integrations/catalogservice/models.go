package catalogservice

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// Service модель услуги из CatalogService
type Service struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	DurationMinutes int            `json:"duration_minutes"`
	Category        string         `json:"category"`
	Deposit         *DepositPolicy `json:"deposit,omitempty"`
}

// DepositPolicy требование предоплаты
type DepositPolicy struct {
	Required bool    `json:"required"`
	Amount   float64 `json:"amount"`
}

// ToDomain конвертирует ответ сервиса в доменную модель
func (s *Service) ToDomain() *domain.Service {
	result := &domain.Service{
		ID:              s.ID,
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		Category:        s.Category,
	}
	if s.Deposit != nil {
		result.DepositPolicy = &domain.DepositPolicy{
			Required: s.Deposit.Required,
			Amount:   s.Deposit.Amount,
		}
	}
	return result
}
