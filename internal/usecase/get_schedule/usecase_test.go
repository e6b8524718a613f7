package get_schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/holds"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/slotpolicy"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/usecasetest"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type fixture struct {
	uc       *UseCase
	clock    *usecasetest.Clock
	staff    *usecasetest.Staff
	appts    *usecasetest.Appointments
	registry *holds.MemoryRegistry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := usecasetest.NewClock(time.Date(2030, 3, 1, 10, 0, 0, 0, time.Local))
	f := &fixture{
		clock:    clock,
		staff:    usecasetest.NewStaff(usecasetest.Stylist(1)),
		appts:    usecasetest.NewAppointments(),
		registry: holds.NewMemoryRegistry(clock),
	}
	policy := slotpolicy.Policy{GranularityMinutes: 15, MinBookingNoticeMinutes: 60, AdvanceBookingDays: 90}
	f.uc = NewUseCase(f.appts, f.registry, f.staff,
		usecasetest.NewCatalog(usecasetest.Service(10, 30), usecasetest.Service(11, 60)),
		policy, 31, logger.Nop{}).WithTimeProvider(clock)
	return f
}

func slotMap(slots []domain.TimeSlot) map[types.TimeString]bool {
	m := make(map[types.TimeString]bool, len(slots))
	for _, s := range slots {
		m[s.StartTime] = s.Available
	}
	return m
}

func TestGetSchedule_MondayWithService(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), &Request{
		StylistID: 1,
		ServiceID: ptr.Ptr(int64(10)),
		From:      usecasetest.Monday,
		To:        usecasetest.Monday,
	})
	require.NoError(t, err)
	require.Len(t, resp.Days, 1)
	assert.Equal(t, 30, resp.DurationMinutes)

	day := resp.Days[0]
	assert.True(t, day.IsWorking)
	assert.Len(t, day.Slots, 36)

	slots := slotMap(day.Slots)
	assert.True(t, slots["09:00"])
	assert.True(t, slots["11:30"])
	assert.False(t, slots["11:45"])
	assert.False(t, slots["12:00"])
	assert.False(t, slots["12:45"])
	assert.True(t, slots["13:00"])
	assert.True(t, slots["17:30"])
	assert.False(t, slots["17:45"])
}

func TestGetSchedule_AppointmentsAndHolds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.appts.Create(ctx, &domain.Appointment{
		StylistID: 1, ServiceID: 11, Date: usecasetest.Monday,
		StartTime: "09:00", EndTime: "10:00", Status: domain.StatusConfirmed, TokenHash: "h1",
	})
	require.NoError(t, err)

	now := f.clock.Now()
	require.NoError(t, f.registry.Acquire(ctx, &domain.Hold{
		ID: "hold-1", SessionID: "s1", StylistID: 1, ServiceID: 10, Date: usecasetest.Monday,
		StartTime: "10:00", EndTime: "10:30", CreatedAt: now, ExpiresAt: now.Add(10 * time.Minute),
	}))

	req := &Request{StylistID: 1, From: usecasetest.Monday, To: usecasetest.Monday}

	req.SessionID = "s1"
	own, err := f.uc.Execute(ctx, req)
	require.NoError(t, err)
	ownSlots := slotMap(own.Days[0].Slots)
	assert.False(t, ownSlots["09:45"])
	assert.True(t, ownSlots["10:00"], "own hold must not hide the slot from its session")

	req.SessionID = "s2"
	other, err := f.uc.Execute(ctx, req)
	require.NoError(t, err)
	otherSlots := slotMap(other.Days[0].Slots)
	assert.False(t, otherSlots["10:00"])
	assert.False(t, otherSlots["10:15"])
	assert.True(t, otherSlots["10:30"])

	// резерв истек - слот снова свободен для всех
	f.clock.Advance(10 * time.Minute)
	expired, err := f.uc.Execute(ctx, req)
	require.NoError(t, err)
	assert.True(t, slotMap(expired.Days[0].Slots)["10:00"])
}

func TestGetSchedule_TodayRespectsNotice(t *testing.T) {
	f := newFixture(t)
	f.clock.Set(usecasetest.Monday.Add(10*time.Hour + 5*time.Minute))

	resp, err := f.uc.Execute(context.Background(), &Request{
		StylistID: 1, From: usecasetest.Monday, To: usecasetest.Monday,
	})
	require.NoError(t, err)

	slots := slotMap(resp.Days[0].Slots)
	assert.False(t, slots["11:00"])
	assert.True(t, slots["11:15"])
}

func TestGetSchedule_RangeIncludesDayOff(t *testing.T) {
	f := newFixture(t)
	saturday := usecasetest.Monday.AddDate(0, 0, -2)

	resp, err := f.uc.Execute(context.Background(), &Request{
		StylistID: 1, From: saturday, To: usecasetest.Monday,
	})
	require.NoError(t, err)
	require.Len(t, resp.Days, 3)

	assert.False(t, resp.Days[0].IsWorking)
	assert.Empty(t, resp.Days[0].Slots)
	assert.False(t, resp.Days[1].IsWorking)
	assert.True(t, resp.Days[2].IsWorking)
}

func TestGetSchedule_Errors(t *testing.T) {
	f := newFixture(t)
	hidden := usecasetest.Stylist(2)
	hidden.VisibleToClients = false
	f.staff.Put(hidden)

	broken := usecasetest.Stylist(3)
	broken.WorkingHours.Monday = usecasetest.WorkingDay("18:00", "09:00")
	f.staff.Put(broken)

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"bad stylist id", Request{StylistID: 0, From: usecasetest.Monday, To: usecasetest.Monday}, ErrInvalidInput},
		{"missing dates", Request{StylistID: 1}, ErrInvalidInput},
		{"reversed range", Request{StylistID: 1, From: usecasetest.Monday, To: usecasetest.Monday.AddDate(0, 0, -1)}, ErrInvalidRange},
		{"range too long", Request{StylistID: 1, From: usecasetest.Monday, To: usecasetest.Monday.AddDate(0, 0, 31)}, ErrInvalidRange},
		{"past date", Request{StylistID: 1, From: time.Date(2030, 2, 28, 0, 0, 0, 0, time.Local), To: usecasetest.Monday}, ErrInvalidDate},
		{"too far", Request{StylistID: 1, From: usecasetest.Monday.AddDate(0, 0, 100), To: usecasetest.Monday.AddDate(0, 0, 100)}, ErrDateTooFarInFuture},
		{"unknown stylist", Request{StylistID: 99, From: usecasetest.Monday, To: usecasetest.Monday}, ErrStylistNotFound},
		{"hidden stylist", Request{StylistID: 2, From: usecasetest.Monday, To: usecasetest.Monday}, ErrStylistNotFound},
		{"broken hours", Request{StylistID: 3, From: usecasetest.Monday, To: usecasetest.Monday}, ErrInvalidWorkingHours},
		{"unknown service", Request{StylistID: 1, ServiceID: ptr.Ptr(int64(77)), From: usecasetest.Monday, To: usecasetest.Monday}, ErrServiceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.uc.Execute(context.Background(), &req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
