package holds

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	holdRegistry "github.com/m04kA/SMC-AppointmentService/internal/infra/holds"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/usecasetest"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

func TestService_GetAndRelease(t *testing.T) {
	clock := usecasetest.NewClock(time.Date(2030, 3, 1, 10, 0, 0, 0, time.Local))
	registry := holdRegistry.NewMemoryRegistry(clock)
	svc := NewService(registry, logger.Nop{})
	ctx := context.Background()

	owner := uuid.NewString()
	hold := &domain.Hold{
		ID: uuid.NewString(), SessionID: owner, StylistID: 1, ServiceID: 10,
		Date: usecasetest.Monday, StartTime: "09:00", EndTime: "10:00",
		CreatedAt: clock.Now(), ExpiresAt: clock.Now().Add(10 * time.Minute),
	}
	require.NoError(t, registry.Acquire(ctx, hold))

	got, err := svc.Get(ctx, owner, hold.ID)
	require.NoError(t, err)
	assert.Equal(t, "2030-03-04", got.Date)
	assert.Equal(t, "10:00", got.EndTime)

	_, err = svc.Get(ctx, uuid.NewString(), hold.ID)
	assert.ErrorIs(t, err, ErrHoldNotFound)

	// чужая сессия не может снять резерв
	assert.ErrorIs(t, svc.Release(ctx, uuid.NewString(), hold.ID), ErrHoldNotFound)

	require.NoError(t, svc.Release(ctx, owner, hold.ID))
	_, err = registry.Get(ctx, hold.ID)
	assert.ErrorIs(t, err, holdRegistry.ErrNotFound)

	// повторное снятие идемпотентно
	assert.NoError(t, svc.Release(ctx, owner, hold.ID))

	assert.ErrorIs(t, svc.Release(ctx, "nope", hold.ID), ErrInvalidInput)
}
