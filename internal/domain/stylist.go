package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// StylistRole capability flag of a stylist entry
type StylistRole string

const (
	RoleStylist StylistRole = "stylist"
	RoleOwner   StylistRole = "owner" // владелец салона, может управлять записями всех мастеров
)

// Stylist мастер, к которому можно записаться.
// Собирается сервисом персонала; здесь не важно, почему запись о мастере существует.
type Stylist struct {
	ID               int64
	Name             string
	Role             StylistRole
	IsActive         bool
	VisibleToClients bool
	WorkingHours     WorkingHours
}

// IsBookable returns true if clients can book this stylist
func (s *Stylist) IsBookable() bool {
	return s.IsActive && s.VisibleToClients
}

// CanManage returns true if the stylist may manage appointments of stylistID
func (s *Stylist) CanManage(stylistID int64) bool {
	return s.Role == RoleOwner || s.ID == stylistID
}

// DayHours рабочие часы в конкретный день недели
type DayHours struct {
	IsWorking bool
	Start     *types.TimeString
	End       *types.TimeString
	Breaks    []Interval
}

// WorkingHours еженедельное расписание мастера
type WorkingHours struct {
	Monday    DayHours
	Tuesday   DayHours
	Wednesday DayHours
	Thursday  DayHours
	Friday    DayHours
	Saturday  DayHours
	Sunday    DayHours
}

// ForWeekday возвращает расписание на день недели
func (w WorkingHours) ForWeekday(weekday time.Weekday) DayHours {
	switch weekday {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	default:
		return DayHours{IsWorking: false}
	}
}

// Validate проверяет расписание всех дней недели
func (w WorkingHours) Validate() error {
	for _, day := range []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	} {
		if err := w.ForWeekday(day).Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidWorkingHours, day, err)
		}
	}
	return nil
}

// Validate проверяет расписание дня:
// start < end, перерывы внутри [start, end] и не пересекаются друг с другом.
func (d DayHours) Validate() error {
	if !d.IsWorking {
		return nil
	}
	if d.Start == nil || d.End == nil {
		return fmt.Errorf("start and end are required for a working day")
	}

	window := Interval{Start: *d.Start, End: *d.End}
	if err := window.Validate(); err != nil {
		return fmt.Errorf("working window: %v", err)
	}

	breaks := d.SortedBreaks()
	for i, br := range breaks {
		if err := br.Validate(); err != nil {
			return fmt.Errorf("break %s-%s: %v", br.Start, br.End, err)
		}
		if !window.Contains(br) {
			return fmt.Errorf("break %s-%s is outside working hours", br.Start, br.End)
		}
		if i > 0 && breaks[i-1].Overlaps(br) {
			return fmt.Errorf("breaks %s-%s and %s-%s overlap",
				breaks[i-1].Start, breaks[i-1].End, br.Start, br.End)
		}
	}
	return nil
}

// SortedBreaks возвращает копию перерывов, упорядоченную по началу
func (d DayHours) SortedBreaks() []Interval {
	breaks := make([]Interval, len(d.Breaks))
	copy(breaks, d.Breaks)
	sort.Slice(breaks, func(i, j int) bool {
		return breaks[i].Start.IsBefore(breaks[j].Start)
	})
	return breaks
}

// Service услуга каталога
type Service struct {
	ID              int64
	Name            string
	DurationMinutes int
	Category        string
	DepositPolicy   *DepositPolicy
}

// DepositPolicy требование предоплаты. Сам платеж не обрабатывается, только фиксируется.
type DepositPolicy struct {
	Required bool
	Amount   float64
}
