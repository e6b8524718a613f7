package availability

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ResolveDay возвращает рабочее окно мастера на дату по его недельному расписанию.
// Выходной день или день без указанных start/end дает IsWorking = false.
func ResolveDay(wh domain.WorkingHours, date time.Time) domain.DayWindow {
	day := wh.ForWeekday(date.Weekday())
	if !day.IsWorking || day.Start == nil || day.End == nil {
		return domain.DayWindow{IsWorking: false}
	}

	return domain.DayWindow{
		IsWorking: true,
		Start:     *day.Start,
		End:       *day.End,
		Breaks:    day.SortedBreaks(),
	}
}
