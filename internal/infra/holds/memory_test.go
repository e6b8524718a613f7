package holds

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var (
	start = time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)
	day   = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
)

func newHold(clock *fakeClock, id, session string, stylist int64, from, to string) *domain.Hold {
	now := clock.Now()
	return &domain.Hold{
		ID:        id,
		SessionID: session,
		StylistID: stylist,
		ServiceID: 1,
		Date:      day,
		StartTime: types.TimeString(from),
		EndTime:   types.TimeString(to),
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
}

func TestMemoryRegistry_AcquireAndGet(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: start}
	r := NewMemoryRegistry(clock)

	require.NoError(t, r.Acquire(ctx, newHold(clock, "h1", "A", 1, "14:00", "14:30")))

	got, err := r.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "A", got.SessionID)
	assert.Equal(t, types.TimeString("14:00"), got.StartTime)

	_, err = r.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRegistry_ConflictWithOtherSession(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: start}
	r := NewMemoryRegistry(clock)

	require.NoError(t, r.Acquire(ctx, newHold(clock, "h1", "A", 1, "14:00", "14:30")))

	err := r.Acquire(ctx, newHold(clock, "h2", "B", 1, "14:15", "14:45"))
	assert.ErrorIs(t, err, ErrConflict)

	// соседний интервал и другой мастер не конфликтуют
	assert.NoError(t, r.Acquire(ctx, newHold(clock, "h3", "B", 1, "14:30", "15:00")))
	assert.NoError(t, r.Acquire(ctx, newHold(clock, "h4", "C", 2, "14:00", "14:30")))
}

func TestMemoryRegistry_SessionReplacesOwnHold(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: start}
	r := NewMemoryRegistry(clock)

	require.NoError(t, r.Acquire(ctx, newHold(clock, "h1", "A", 1, "14:00", "14:30")))
	require.NoError(t, r.Acquire(ctx, newHold(clock, "h2", "A", 1, "14:15", "14:45")))

	_, err := r.Get(ctx, "h1")
	assert.ErrorIs(t, err, ErrNotFound)

	active, err := r.ListActive(ctx, 1, day)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "h2", active[0].ID)

	// замена на другой день мастера тоже снимает прежний резерв
	other := newHold(clock, "h3", "A", 1, "09:00", "09:30")
	other.Date = day.AddDate(0, 0, 1)
	require.NoError(t, r.Acquire(ctx, other))

	active, err = r.ListActive(ctx, 1, day)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestMemoryRegistry_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: start}
	r := NewMemoryRegistry(clock)

	require.NoError(t, r.Acquire(ctx, newHold(clock, "h1", "A", 1, "14:00", "14:30")))

	clock.Advance(10 * time.Minute)

	_, err := r.Get(ctx, "h1")
	assert.ErrorIs(t, err, ErrNotFound)

	active, err := r.ListActive(ctx, 1, day)
	require.NoError(t, err)
	assert.Empty(t, active)

	// истекший резерв не мешает другой сессии
	assert.NoError(t, r.Acquire(ctx, newHold(clock, "h2", "B", 1, "14:00", "14:30")))
}

func TestMemoryRegistry_ReleaseIdempotent(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: start}
	r := NewMemoryRegistry(clock)

	require.NoError(t, r.Acquire(ctx, newHold(clock, "h1", "A", 1, "14:00", "14:30")))

	assert.NoError(t, r.Release(ctx, "h1"))
	assert.NoError(t, r.Release(ctx, "h1"))
	assert.NoError(t, r.Release(ctx, "unknown"))

	_, err := r.Get(ctx, "h1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, r.Acquire(ctx, newHold(clock, "h2", "B", 1, "14:00", "14:30")))
}

func TestMemoryRegistry_SweepAndCount(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: start}
	r := NewMemoryRegistry(clock)

	require.NoError(t, r.Acquire(ctx, newHold(clock, "h1", "A", 1, "09:00", "09:30")))
	clock.Advance(5 * time.Minute)
	require.NoError(t, r.Acquire(ctx, newHold(clock, "h2", "B", 2, "09:00", "09:30")))

	count, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	clock.Advance(6 * time.Minute)

	removed, err := r.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	count, err = r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	r.mu.RLock()
	assert.Len(t, r.shards, 1)
	assert.Len(t, r.byID, 1)
	assert.Len(t, r.bySession, 1)
	r.mu.RUnlock()
}

func TestMemoryRegistry_ConcurrentAcquireSameInterval(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: start}
	r := NewMemoryRegistry(clock)

	var (
		wg      sync.WaitGroup
		success atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h := newHold(clock, fmt.Sprintf("h%d", i), fmt.Sprintf("s%d", i), 1, "14:00", "14:30")
			if err := r.Acquire(ctx, h); err == nil {
				success.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), success.Load())
}

type gaugeRecorder struct{ last int }

func (g *gaugeRecorder) SetActiveHolds(n int) { g.last = n }

func TestSweeper_RunOnce(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: start}
	r := NewMemoryRegistry(clock)
	gauge := &gaugeRecorder{}

	s, err := NewSweeper(r, "@every 1m", gauge, logger.Nop{})
	require.NoError(t, err)

	require.NoError(t, r.Acquire(ctx, newHold(clock, "h1", "A", 1, "09:00", "09:30")))
	require.NoError(t, r.Acquire(ctx, newHold(clock, "h2", "B", 1, "10:00", "10:30")))

	removed, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.Equal(t, 2, gauge.last)

	clock.Advance(time.Hour)
	removed, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, gauge.last)
}

func TestNewSweeper_BadSchedule(t *testing.T) {
	_, err := NewSweeper(NewMemoryRegistry(nil), "every minute", nil, logger.Nop{})
	assert.Error(t, err)
}
