package staffservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const stylistJSON = `{
	"id": 7,
	"name": "Mara",
	"role": "owner",
	"is_active": true,
	"visible_to_clients": true,
	"working_hours": {
		"monday": {"is_working": true, "start": "09:00", "end": "18:00",
			"breaks": [{"start": "12:00", "end": "13:00"}]},
		"sunday": {"is_working": false}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, logger.Nop{})
}

func TestClient_GetStylist(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/stylists/7", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(stylistJSON))
	})

	s, err := c.GetStylist(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleOwner, s.Role)
	assert.True(t, s.IsBookable())
	mon := s.WorkingHours.Monday
	require.True(t, mon.IsWorking)
	assert.Equal(t, types.TimeString("09:00"), *mon.Start)
	assert.Equal(t, []domain.Interval{{Start: "12:00", End: "13:00"}}, mon.Breaks)
	assert.False(t, s.WorkingHours.Sunday.IsWorking)
	assert.False(t, s.WorkingHours.Tuesday.IsWorking)
}

func TestClient_GetStylist_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetStylist(context.Background(), 1)
	assert.ErrorIs(t, err, ErrStylistNotFound)
}

func TestClient_GetStylist_BadTime(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"working_hours":{"monday":{"is_working":true,"start":"9am","end":"18:00"}}}`))
	})

	_, err := c.GetStylist(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_GetActiveStylists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("active"))
		_, _ = w.Write([]byte(`[` + stylistJSON + `]`))
	})

	list, err := c.GetActiveStylists(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].ID)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.GetActiveStylists(context.Background())
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
