package staffservice

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Stylist модель мастера из StaffService
type Stylist struct {
	ID               int64        `json:"id"`
	Name             string       `json:"name"`
	Role             string       `json:"role"` // stylist | owner
	IsActive         bool         `json:"is_active"`
	VisibleToClients bool         `json:"visible_to_clients"`
	WorkingHours     WorkingHours `json:"working_hours"`
}

// WorkingHours расписание по дням недели
type WorkingHours struct {
	Monday    DayHours `json:"monday"`
	Tuesday   DayHours `json:"tuesday"`
	Wednesday DayHours `json:"wednesday"`
	Thursday  DayHours `json:"thursday"`
	Friday    DayHours `json:"friday"`
	Saturday  DayHours `json:"saturday"`
	Sunday    DayHours `json:"sunday"`
}

// DayHours рабочие часы дня
type DayHours struct {
	IsWorking bool    `json:"is_working"`
	Start     *string `json:"start,omitempty"`
	End       *string `json:"end,omitempty"`
	Breaks    []Break `json:"breaks,omitempty"`
}

// Break перерыв внутри рабочего дня
type Break struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ErrorResponse модель ошибки от StaffService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ToDomain конвертирует ответ сервиса в доменную модель.
// Нормализует время к HH:MM, семантическую проверку расписания выполняет вызывающий.
func (s *Stylist) ToDomain() (*domain.Stylist, error) {
	role := domain.RoleStylist
	if s.Role == string(domain.RoleOwner) {
		role = domain.RoleOwner
	}

	days := []*DayHours{
		&s.WorkingHours.Monday, &s.WorkingHours.Tuesday, &s.WorkingHours.Wednesday,
		&s.WorkingHours.Thursday, &s.WorkingHours.Friday, &s.WorkingHours.Saturday,
		&s.WorkingHours.Sunday,
	}
	converted := make([]domain.DayHours, 0, len(days))
	for i, d := range days {
		dh, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("stylist id=%d day %d: %v", s.ID, i+1, err)
		}
		converted = append(converted, dh)
	}

	return &domain.Stylist{
		ID:               s.ID,
		Name:             s.Name,
		Role:             role,
		IsActive:         s.IsActive,
		VisibleToClients: s.VisibleToClients,
		WorkingHours: domain.WorkingHours{
			Monday:    converted[0],
			Tuesday:   converted[1],
			Wednesday: converted[2],
			Thursday:  converted[3],
			Friday:    converted[4],
			Saturday:  converted[5],
			Sunday:    converted[6],
		},
	}, nil
}

func (d *DayHours) toDomain() (domain.DayHours, error) {
	if !d.IsWorking {
		return domain.DayHours{IsWorking: false}, nil
	}

	result := domain.DayHours{IsWorking: true}
	if d.Start != nil {
		start, err := types.NewTimeStringFromString(*d.Start)
		if err != nil {
			return result, fmt.Errorf("start: %v", err)
		}
		result.Start = &start
	}
	if d.End != nil {
		end, err := types.NewTimeStringFromString(*d.End)
		if err != nil {
			return result, fmt.Errorf("end: %v", err)
		}
		result.End = &end
	}

	for _, b := range d.Breaks {
		start, err := types.NewTimeStringFromString(b.Start)
		if err != nil {
			return result, fmt.Errorf("break start: %v", err)
		}
		end, err := types.NewTimeStringFromString(b.End)
		if err != nil {
			return result, fmt.Errorf("break end: %v", err)
		}
		result.Breaks = append(result.Breaks, domain.Interval{Start: start, End: end})
	}
	return result, nil
}
