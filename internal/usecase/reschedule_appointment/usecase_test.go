package reschedule_appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/authority"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/holds"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/slotpolicy"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/usecasetest"
	"github.com/m04kA/SMC-AppointmentService/pkg/keylock"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type fixture struct {
	uc        *UseCase
	clock     *usecasetest.Clock
	appts     *usecasetest.Appointments
	publisher *usecasetest.Publisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := usecasetest.NewClock(time.Date(2030, 3, 1, 10, 0, 0, 0, time.Local))
	f := &fixture{
		clock:     clock,
		appts:     usecasetest.NewAppointments(),
		publisher: &usecasetest.Publisher{},
	}
	policy := slotpolicy.Policy{GranularityMinutes: 15, MinBookingNoticeMinutes: 60, AdvanceBookingDays: 90}
	f.uc = NewUseCase(f.appts, holds.NewMemoryRegistry(clock), authority.New(24*time.Hour), keylock.New(),
		usecasetest.NewStaff(usecasetest.Stylist(1)),
		usecasetest.NewCatalog(usecasetest.Service(10, 60)),
		f.publisher, usecasetest.TxManager{}, policy, &usecasetest.Metrics{}, logger.Nop{}).WithTimeProvider(clock)
	return f
}

// seed создает запись и возвращает ее токен
func (f *fixture) seed(t *testing.T, start, end types.TimeString, status domain.AppointmentStatus) (string, *domain.Appointment) {
	t.Helper()
	token, hash, err := authority.NewToken()
	require.NoError(t, err)
	appt, err := f.appts.Create(context.Background(), &domain.Appointment{
		StylistID: 1, ServiceID: 10, Date: usecasetest.Monday,
		StartTime: start, EndTime: end, DurationMinutes: 60,
		Status: status, TokenHash: hash, Client: usecasetest.Client(),
	})
	require.NoError(t, err)
	return token, appt
}

func TestReschedule_Success(t *testing.T) {
	f := newFixture(t)
	token, appt := f.seed(t, "09:00", "10:00", domain.StatusScheduled)
	tuesday := usecasetest.Monday.AddDate(0, 0, 1)

	resp, err := f.uc.Execute(context.Background(), &Request{Token: token, Date: tuesday, StartTime: "14:00"})
	require.NoError(t, err)

	assert.Equal(t, appt.ID, resp.AppointmentID)
	assert.Equal(t, types.TimeString("15:00"), resp.EndTime)
	assert.Equal(t, string(domain.StatusRescheduled), resp.Status)

	stored, err := f.appts.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.True(t, stored.Date.Equal(tuesday))
	assert.Equal(t, types.TimeString("14:00"), stored.StartTime)
	require.NotNil(t, stored.RescheduledAt)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventAppointmentRescheduled, events[0].Type)
	assert.Empty(t, events[0].ModificationToken)
}

func TestReschedule_OverlapWithItselfAllowed(t *testing.T) {
	f := newFixture(t)
	token, _ := f.seed(t, "09:00", "10:00", domain.StatusConfirmed)

	_, err := f.uc.Execute(context.Background(), &Request{Token: token, Date: usecasetest.Monday, StartTime: "09:30"})
	require.NoError(t, err)

	// повторный перенос той же записи тоже разрешен
	_, err = f.uc.Execute(context.Background(), &Request{Token: token, Date: usecasetest.Monday, StartTime: "09:45"})
	assert.NoError(t, err)
}

func TestReschedule_ConflictWithOtherAppointment(t *testing.T) {
	f := newFixture(t)
	token, _ := f.seed(t, "09:00", "10:00", domain.StatusScheduled)
	f.seed(t, "14:00", "15:00", domain.StatusScheduled)

	_, err := f.uc.Execute(context.Background(), &Request{Token: token, Date: usecasetest.Monday, StartTime: "13:30"})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestReschedule_ModificationWindow(t *testing.T) {
	f := newFixture(t)
	token, _ := f.seed(t, "09:00", "10:00", domain.StatusScheduled)
	req := &Request{Token: token, Date: usecasetest.Monday, StartTime: "15:00"}

	// ровно за 24 часа еще можно
	f.clock.Set(usecasetest.Monday.Add(9*time.Hour).Add(-24 * time.Hour))
	_, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// запись теперь в 15:00; за 23 часа до нее уже нельзя
	f.clock.Set(usecasetest.Monday.Add(15*time.Hour).Add(-23 * time.Hour))
	req.StartTime = "16:00"
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrModificationForbidden)
}

func TestReschedule_TerminalStatus(t *testing.T) {
	for _, status := range domain.TerminalStatuses {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			token, _ := f.seed(t, "09:00", "10:00", status)

			_, err := f.uc.Execute(context.Background(), &Request{Token: token, Date: usecasetest.Monday, StartTime: "14:00"})
			assert.ErrorIs(t, err, ErrModificationForbidden)
		})
	}
}

func TestReschedule_Rejections(t *testing.T) {
	f := newFixture(t)
	token, _ := f.seed(t, "09:00", "10:00", domain.StatusScheduled)
	otherToken, _, err := authority.NewToken()
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"malformed token", Request{Token: "abc", Date: usecasetest.Monday, StartTime: "14:00"}, ErrAppointmentNotFound},
		{"unknown token", Request{Token: otherToken, Date: usecasetest.Monday, StartTime: "14:00"}, ErrAppointmentNotFound},
		{"missing date", Request{Token: token, StartTime: "14:00"}, ErrInvalidInput},
		{"off grid", Request{Token: token, Date: usecasetest.Monday, StartTime: "14:05"}, ErrInvalidTimeSlot},
		{"day off", Request{Token: token, Date: usecasetest.Monday.AddDate(0, 0, 5), StartTime: "14:00"}, ErrStylistNotWorking},
		{"past", Request{Token: token, Date: time.Date(2030, 2, 27, 0, 0, 0, 0, time.Local), StartTime: "14:00"}, ErrInvalidDate},
		{"into break", Request{Token: token, Date: usecasetest.Monday, StartTime: "11:30"}, ErrSlotNotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.uc.Execute(context.Background(), &req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReschedule_NewStartWithinModificationNotice(t *testing.T) {
	f := newFixture(t)
	token, appt := f.seed(t, "17:00", "18:00", domain.StatusScheduled)
	// до записи 24.5 часа, менять ее еще можно
	f.clock.Set(usecasetest.Monday.Add(-24*time.Hour + 16*time.Hour + 30*time.Minute))

	_, err := f.uc.Execute(context.Background(), &Request{Token: token, Date: usecasetest.Monday, StartTime: "10:00"})
	require.ErrorIs(t, err, ErrTooLateToBook)

	stored, err := f.appts.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("17:00"), stored.StartTime)
	assert.Empty(t, f.publisher.Events())

	// ровно на границе окна
	resp, err := f.uc.Execute(context.Background(), &Request{Token: token, Date: usecasetest.Monday, StartTime: "16:30"})
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("17:30"), resp.EndTime)
}
