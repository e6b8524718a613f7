package cancel_appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type stubService struct {
	token string
	req   *models.CancelRequest
	err   error
}

func (s *stubService) CancelByToken(_ context.Context, token string, req *models.CancelRequest) (*models.AppointmentResponse, error) {
	s.token, s.req = token, req
	if s.err != nil {
		return nil, s.err
	}
	return &models.AppointmentResponse{ID: 42, Status: "cancelled"}, nil
}

func serve(svc *stubService, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/appointments/{token}/cancel", NewHandler(svc, logger.Nop{}).Handle).Methods(http.MethodPost)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/appointments/abc/cancel", strings.NewReader(body)))
	return rec
}

func TestHandle_EmptyBody(t *testing.T) {
	svc := &stubService{}
	rec := serve(svc, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", svc.token)
	assert.Nil(t, svc.req.Reason)
	assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)
}

func TestHandle_WithReason(t *testing.T) {
	svc := &stubService{}
	rec := serve(svc, `{"reason":"заболела"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.req.Reason)
	assert.Equal(t, "заболела", *svc.req.Reason)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{appointments.ErrAppointmentNotFound, http.StatusNotFound},
		{appointments.ErrModificationForbidden, http.StatusForbidden},
		{appointments.ErrInvalidInput, http.StatusBadRequest},
		{appointments.ErrInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := serve(&stubService{err: tt.err}, "")
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
