package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/authority"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/usecasetest"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

type fixture struct {
	svc       *Service
	clock     *usecasetest.Clock
	appts     *usecasetest.Appointments
	publisher *usecasetest.Publisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := usecasetest.NewClock(time.Date(2030, 3, 1, 10, 0, 0, 0, time.Local))
	inactive := usecasetest.Stylist(4)
	inactive.IsActive = false

	f := &fixture{
		clock:     clock,
		appts:     usecasetest.NewAppointments(),
		publisher: &usecasetest.Publisher{},
	}
	f.svc = NewService(f.appts,
		usecasetest.NewStaff(usecasetest.Stylist(1), usecasetest.Stylist(2), usecasetest.Owner(3), inactive),
		authority.New(24*time.Hour), f.publisher, usecasetest.TxManager{}, &usecasetest.Metrics{}, logger.Nop{}).
		WithTimeProvider(clock)
	return f
}

func (f *fixture) seed(t *testing.T, stylistID int64, status domain.AppointmentStatus) (string, *domain.Appointment) {
	t.Helper()
	token, hash, err := authority.NewToken()
	require.NoError(t, err)
	appt, err := f.appts.Create(context.Background(), &domain.Appointment{
		StylistID: stylistID, ServiceID: 10, Date: usecasetest.Monday,
		StartTime: "09:00", EndTime: "10:00", DurationMinutes: 60,
		Status: status, TokenHash: hash, Client: usecasetest.Client(),
	})
	require.NoError(t, err)
	return token, appt
}

func TestGetByToken(t *testing.T) {
	f := newFixture(t)
	token, appt := f.seed(t, 1, domain.StatusScheduled)

	resp, err := f.svc.GetByToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, resp.ID)
	require.NotNil(t, resp.CanModify)
	assert.True(t, *resp.CanModify)
	require.NotNil(t, resp.ModifiableUntil)
	assert.True(t, resp.ModifiableUntil.Equal(usecasetest.Monday.Add(9*time.Hour).Add(-24*time.Hour)))

	// в последние 24 часа запись видна, но менять ее нельзя
	f.clock.Set(usecasetest.Monday.Add(8 * time.Hour))
	resp, err = f.svc.GetByToken(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, *resp.CanModify)

	_, err = f.svc.GetByToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestCancelByToken(t *testing.T) {
	f := newFixture(t)
	token, appt := f.seed(t, 1, domain.StatusConfirmed)

	resp, err := f.svc.CancelByToken(context.Background(), token, &models.CancelRequest{Reason: ptr.Ptr("sick")})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)

	stored, err := f.appts.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Equal(t, "sick", *stored.CancellationReason)
	require.NotNil(t, stored.CancelledAt)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventAppointmentCancelled, events[0].Type)

	// отмененную запись повторно не отменить
	_, err = f.svc.CancelByToken(context.Background(), token, &models.CancelRequest{})
	assert.ErrorIs(t, err, ErrModificationForbidden)
}

func TestCancelByToken_WindowClosed(t *testing.T) {
	f := newFixture(t)
	token, appt := f.seed(t, 1, domain.StatusScheduled)
	f.clock.Set(usecasetest.Monday.Add(9 * time.Hour).Add(-24*time.Hour + time.Minute))

	_, err := f.svc.CancelByToken(context.Background(), token, &models.CancelRequest{})
	assert.ErrorIs(t, err, ErrModificationForbidden)

	stored, err := f.appts.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, stored.Status)
}

func TestCancelByToken_ReasonTooLong(t *testing.T) {
	f := newFixture(t)
	token, _ := f.seed(t, 1, domain.StatusScheduled)
	reason := string(make([]byte, domain.MaxCancellationReasonLength+1))

	_, err := f.svc.CancelByToken(context.Background(), token, &models.CancelRequest{Reason: &reason})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		actor   int64
		initial domain.AppointmentStatus
		status  string
		wantErr error
	}{
		{name: "own confirm", actor: 1, initial: domain.StatusScheduled, status: "confirmed"},
		{name: "owner completes", actor: 3, initial: domain.StatusConfirmed, status: "completed"},
		{name: "no show", actor: 1, initial: domain.StatusRescheduled, status: "noShow"},
		{name: "staff cancel", actor: 1, initial: domain.StatusScheduled, status: "cancelled"},
		{name: "other stylist", actor: 2, initial: domain.StatusScheduled, status: "confirmed", wantErr: ErrAccessDenied},
		{name: "inactive actor", actor: 4, initial: domain.StatusScheduled, status: "confirmed", wantErr: ErrAccessDenied},
		{name: "unknown actor", actor: 99, initial: domain.StatusScheduled, status: "confirmed", wantErr: ErrAccessDenied},
		{name: "terminal", actor: 1, initial: domain.StatusCompleted, status: "confirmed", wantErr: ErrInvalidTransition},
		{name: "unknown status", actor: 1, initial: domain.StatusScheduled, status: "lost", wantErr: ErrInvalidStatus},
		{name: "rescheduled directly", actor: 1, initial: domain.StatusScheduled, status: "rescheduled", wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, appt := f.seed(t, 1, tt.initial)

			resp, err := f.svc.UpdateStatus(context.Background(), appt.ID,
				&models.UpdateStatusRequest{ActorID: tt.actor, Status: tt.status})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				stored, getErr := f.appts.GetByID(context.Background(), appt.ID)
				require.NoError(t, getErr)
				assert.Equal(t, tt.initial, stored.Status)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.Status)
			require.Len(t, f.publisher.Events(), 1)
		})
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateStatus(context.Background(), 404, &models.UpdateStatusRequest{ActorID: 1, Status: "confirmed"})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestListStylistAppointments(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 1, domain.StatusScheduled)
	f.seed(t, 1, domain.StatusCancelled)
	f.seed(t, 2, domain.StatusScheduled)

	resp, err := f.svc.ListStylistAppointments(context.Background(), &models.ListStylistAppointmentsRequest{
		ActorID: 1, StylistID: 1,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 1)

	resp, err = f.svc.ListStylistAppointments(context.Background(), &models.ListStylistAppointmentsRequest{
		ActorID: 3, StylistID: 1, IncludeInactive: true,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 2)

	_, err = f.svc.ListStylistAppointments(context.Background(), &models.ListStylistAppointmentsRequest{
		ActorID: 2, StylistID: 1,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	from, to := usecasetest.Monday, usecasetest.Monday.AddDate(0, 0, -1)
	_, err = f.svc.ListStylistAppointments(context.Background(), &models.ListStylistAppointmentsRequest{
		ActorID: 1, StylistID: 1, From: &from, To: &to,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
