package create_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

const (
	sessionID   = "5f0c5b4e-6a58-4c1b-9b2a-1d3c2f4e5a6b"
	bookingBody = `{"holdId":"9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d","client":{"firstName":"Анна","lastName":"Иванова","email":"anna@example.com","phone":"+79990000000"}}`
)

type stubUseCase struct {
	got *createBooking.Request
	err error
}

func (s *stubUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &createBooking.Response{
		AppointmentID:     42,
		ModificationToken: "token-42",
		StylistID:         7,
		ServiceID:         3,
		Date:              time.Date(2030, 3, 4, 0, 0, 0, 0, time.Local),
		StartTime:         "14:00",
		EndTime:           "15:00",
		DurationMinutes:   60,
		Status:            "confirmed",
		CreatedAt:         time.Date(2030, 3, 1, 10, 0, 0, 0, time.UTC),
	}, nil
}

func serve(uc *stubUseCase, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	req.Header.Set(middleware.HeaderSessionID, sessionID)
	rec := httptest.NewRecorder()
	middleware.RequireSession(http.HandlerFunc(NewHandler(uc, logger.Nop{}).Handle)).ServeHTTP(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	uc := &stubUseCase{}
	rec := serve(uc, bookingBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, sessionID, uc.got.SessionID)
	assert.Equal(t, "Анна", uc.got.Client.FirstName)

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.AppointmentID)
	assert.Equal(t, "token-42", resp.ModificationToken)
	assert.Equal(t, "2030-03-04", resp.Date)
	assert.Equal(t, "15:00", resp.EndTime)
}

func TestHandle_BadBody(t *testing.T) {
	uc := &stubUseCase{}
	rec := serve(uc, `{"holdId":"x","extra":true}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{createBooking.ErrHoldNotFound, http.StatusNotFound},
		{createBooking.ErrSlotNotAvailable, http.StatusConflict},
		{createBooking.ErrStylistNotFound, http.StatusNotFound},
		{createBooking.ErrServiceNotFound, http.StatusNotFound},
		{createBooking.ErrInvalidDate, http.StatusBadRequest},
		{createBooking.ErrTooLateToBook, http.StatusBadRequest},
		{createBooking.ErrInvalidInput, http.StatusBadRequest},
		{createBooking.ErrInvalidWorkingHours, http.StatusServiceUnavailable},
		{createBooking.ErrInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := serve(&stubUseCase{err: fmt.Errorf("%w: details", tt.err)}, bookingBody)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
