package create_hold

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/holds"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/slotpolicy"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/usecasetest"
	"github.com/m04kA/SMC-AppointmentService/pkg/keylock"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type fixture struct {
	uc       *UseCase
	clock    *usecasetest.Clock
	appts    *usecasetest.Appointments
	registry *holds.MemoryRegistry
	metrics  *usecasetest.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := usecasetest.NewClock(time.Date(2030, 3, 1, 10, 0, 0, 0, time.Local))
	f := &fixture{
		clock:    clock,
		appts:    usecasetest.NewAppointments(),
		registry: holds.NewMemoryRegistry(clock),
		metrics:  &usecasetest.Metrics{},
	}
	policy := slotpolicy.Policy{GranularityMinutes: 15, MinBookingNoticeMinutes: 60, AdvanceBookingDays: 90}
	f.uc = NewUseCase(f.appts, f.registry, keylock.New(),
		usecasetest.NewStaff(usecasetest.Stylist(1)),
		usecasetest.NewCatalog(usecasetest.Service(10, 50)),
		policy, 10*time.Minute, f.metrics, logger.Nop{}).WithTimeProvider(clock)
	return f
}

func holdRequest(session string, start types.TimeString) *Request {
	return &Request{
		SessionID: session,
		StylistID: 1,
		ServiceID: 10,
		Date:      usecasetest.Monday,
		StartTime: start,
	}
}

func TestCreateHold_Success(t *testing.T) {
	f := newFixture(t)
	session := uuid.NewString()

	resp, err := f.uc.Execute(context.Background(), holdRequest(session, "09:00"))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.HoldID)
	assert.Equal(t, types.TimeString("10:00"), resp.EndTime, "50 minutes round up to four ticks")
	assert.Equal(t, f.clock.Now().Add(10*time.Minute), resp.ExpiresAt)

	stored, err := f.registry.Get(context.Background(), resp.HoldID)
	require.NoError(t, err)
	assert.Equal(t, session, stored.SessionID)
	assert.Equal(t, 1, f.metrics.Count("hold", "success"))
}

func TestCreateHold_OtherSessionConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, holdRequest(uuid.NewString(), "09:00"))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, holdRequest(uuid.NewString(), "09:30"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, 1, f.metrics.Count("hold", "conflict"))

	// после истечения первого резерва слот снова можно взять
	f.clock.Advance(10 * time.Minute)
	_, err = f.uc.Execute(ctx, holdRequest(uuid.NewString(), "09:30"))
	assert.NoError(t, err)
}

func TestCreateHold_SameSessionReplaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := uuid.NewString()

	first, err := f.uc.Execute(ctx, holdRequest(session, "09:00"))
	require.NoError(t, err)

	// новый резерв пересекается с собственным - это не конфликт
	second, err := f.uc.Execute(ctx, holdRequest(session, "09:30"))
	require.NoError(t, err)

	_, err = f.registry.Get(ctx, first.HoldID)
	assert.ErrorIs(t, err, holds.ErrNotFound)

	active, err := f.registry.ListActive(ctx, 1, usecasetest.Monday)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.HoldID, active[0].ID)
}

func TestCreateHold_AppointmentConflicts(t *testing.T) {
	f := newFixture(t)
	_, err := f.appts.Create(context.Background(), &domain.Appointment{
		StylistID: 1, Date: usecasetest.Monday, StartTime: "10:00", EndTime: "11:00",
		Status: domain.StatusScheduled, TokenHash: "h",
	})
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), holdRequest(uuid.NewString(), "09:30"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	_, err = f.uc.Execute(context.Background(), holdRequest(uuid.NewString(), "11:00"))
	assert.NoError(t, err)
}

func TestCreateHold_Rejections(t *testing.T) {
	f := newFixture(t)
	saturday := usecasetest.Monday.AddDate(0, 0, -2)

	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
	}{
		{"bad session", func(r *Request) { r.SessionID = "abc" }, ErrInvalidInput},
		{"bad time", func(r *Request) { r.StartTime = "25:00" }, ErrInvalidInput},
		{"off grid", func(r *Request) { r.StartTime = "09:10" }, ErrInvalidTimeSlot},
		{"into break", func(r *Request) { r.StartTime = "11:30" }, ErrSlotNotAvailable},
		{"day off", func(r *Request) { r.Date = saturday }, ErrStylistNotWorking},
		{"past date", func(r *Request) { r.Date = time.Date(2030, 2, 1, 0, 0, 0, 0, time.Local) }, ErrInvalidDate},
		{"unknown stylist", func(r *Request) { r.StylistID = 5 }, ErrStylistNotFound},
		{"unknown service", func(r *Request) { r.ServiceID = 5 }, ErrServiceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := holdRequest(uuid.NewString(), "09:00")
			tt.mutate(req)
			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateHold_ConcurrentSessionsOneWinner(t *testing.T) {
	f := newFixture(t)

	const sessions = 30
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.uc.Execute(context.Background(), holdRequest(uuid.NewString(), "14:00")); err == nil {
				atomic.AddInt32(&wins, 1)
			} else {
				assert.ErrorIs(t, err, ErrSlotNotAvailable)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}
