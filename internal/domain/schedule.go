package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// DayWindow рабочее окно мастера на конкретную дату
type DayWindow struct {
	IsWorking bool
	Start     types.TimeString
	End       types.TimeString
	Breaks    []Interval
}

// TimeSlot represents an atomic tick annotated with availability
type TimeSlot struct {
	StartTime types.TimeString
	Available bool
}

// DaySchedule слоты мастера на одну дату. Вычисляется на каждый запрос и не хранится.
type DaySchedule struct {
	Date      time.Time
	StylistID int64
	IsWorking bool
	Slots     []TimeSlot
}

// AvailableCount returns the number of available slots
func (d *DaySchedule) AvailableCount() int {
	count := 0
	for _, s := range d.Slots {
		if s.Available {
			count++
		}
	}
	return count
}

// DayKey ключ блокировки (мастер, дата)
func DayKey(stylistID int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", stylistID, date.Format(DateFormat))
}

// DateOnly отбрасывает время, сохраняя часовой пояс
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
