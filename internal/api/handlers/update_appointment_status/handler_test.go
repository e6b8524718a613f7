package update_appointment_status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type stubService struct {
	id  int64
	req *models.UpdateStatusRequest
	err error
}

func (s *stubService) UpdateStatus(_ context.Context, id int64, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.id, s.req = id, req
	if s.err != nil {
		return nil, s.err
	}
	return &models.AppointmentResponse{ID: id, Status: req.Status}, nil
}

func serve(svc *stubService, path, userID, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	protected := r.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)
	protected.HandleFunc("/appointments/id/{appointmentId}/status", NewHandler(svc, logger.Nop{}).Handle).
		Methods(http.MethodPatch)

	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	svc := &stubService{}
	rec := serve(svc, "/appointments/id/42/status", "7", `{"status":"confirmed"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), svc.id)
	assert.Equal(t, int64(7), svc.req.ActorID)
	assert.Equal(t, "confirmed", svc.req.Status)
}

func TestHandle_ActorComesFromHeaderOnly(t *testing.T) {
	svc := &stubService{}
	rec := serve(svc, "/appointments/id/42/status", "7", `{"status":"confirmed","actorId":1}`)

	// ActorID не принимается из тела
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.req)
}

func TestHandle_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		userID string
		err    error
		status int
	}{
		{"no auth header", "/appointments/id/42/status", "", nil, http.StatusUnauthorized},
		{"bad id", "/appointments/id/zero/status", "7", nil, http.StatusBadRequest},
		{"not found", "/appointments/id/42/status", "7", appointments.ErrAppointmentNotFound, http.StatusNotFound},
		{"foreign stylist", "/appointments/id/42/status", "7", appointments.ErrAccessDenied, http.StatusForbidden},
		{"bad status", "/appointments/id/42/status", "7", appointments.ErrInvalidStatus, http.StatusBadRequest},
		{"bad transition", "/appointments/id/42/status", "7", appointments.ErrInvalidTransition, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&stubService{err: tt.err}, tt.path, tt.userID, `{"status":"completed"}`)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
