package usecasetest

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Monday понедельник, на который рассчитаны сценарии тестов
var Monday = time.Date(2030, 3, 4, 0, 0, 0, 0, time.Local)

// WorkingDay рабочий день start-end с перерывами
func WorkingDay(start, end types.TimeString, breaks ...domain.Interval) domain.DayHours {
	return domain.DayHours{
		IsWorking: true,
		Start:     ptr.Ptr(start),
		End:       ptr.Ptr(end),
		Breaks:    breaks,
	}
}

// WeekdayHours расписание пн-пт 09:00-18:00 с перерывом 12:00-13:00, выходные не рабочие
func WeekdayHours() domain.WorkingHours {
	day := WorkingDay("09:00", "18:00", domain.Interval{Start: "12:00", End: "13:00"})
	return domain.WorkingHours{
		Monday:    day,
		Tuesday:   day,
		Wednesday: day,
		Thursday:  day,
		Friday:    day,
	}
}

// Stylist активный видимый мастер с расписанием WeekdayHours
func Stylist(id int64) *domain.Stylist {
	return &domain.Stylist{
		ID:               id,
		Name:             "Stylist",
		Role:             domain.RoleStylist,
		IsActive:         true,
		VisibleToClients: true,
		WorkingHours:     WeekdayHours(),
	}
}

// Owner владелец салона
func Owner(id int64) *domain.Stylist {
	s := Stylist(id)
	s.Role = domain.RoleOwner
	return s
}

// Service услуга указанной длительности
func Service(id int64, durationMinutes int) *domain.Service {
	return &domain.Service{ID: id, Name: "Service", DurationMinutes: durationMinutes, Category: "hair"}
}

// Client данные клиента для подтверждения записи
func Client() domain.ClientInfo {
	return domain.ClientInfo{
		FirstName: "Anna",
		LastName:  "Petrova",
		Email:     "anna@example.com",
		Phone:     "+10000000000",
	}
}
