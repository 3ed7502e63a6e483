package cancel_booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/api/middleware"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings/models"
	"github.com/m04kA/SMC-ConsultationService/pkg/logger"
)

type serviceStub struct {
	gotID  string
	gotReq *models.CancelBookingRequest
	err    error
}

func (s *serviceStub) Cancel(_ context.Context, id string, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.gotID, s.gotReq = id, req
	if s.err != nil {
		return nil, s.err
	}
	return &models.BookingResponse{ID: id, Status: "cancelled"}, nil
}

func router(stub *serviceStub) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/bookings/{bookingId}/cancel", NewHandler(stub, logger.NewNop()).Handle).Methods(http.MethodPost)
	return r
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bookings/b1/cancel", strings.NewReader(body))
	req.Header.Set(middleware.UserIDHeader, "client-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandle_EmptyBody(t *testing.T) {
	stub := &serviceStub{}

	rec := post(router(stub), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b1", stub.gotID)
	assert.Equal(t, "client-1", stub.gotReq.ActorID)
	assert.Nil(t, stub.gotReq.CancellationReason)
}

func TestHandle_WithReason(t *testing.T) {
	stub := &serviceStub{}

	rec := post(router(stub), `{"cancellationReason":"заболел"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "заболел", *stub.gotReq.CancellationReason)
}

func TestHandle_Errors(t *testing.T) {
	for err, status := range map[error]int{
		bookings.ErrBookingNotFound:          http.StatusNotFound,
		bookings.ErrAccessDenied:             http.StatusForbidden,
		bookings.ErrCannotCancel:             http.StatusConflict,
		bookings.ErrCancellationWindowClosed: http.StatusConflict,
		bookings.ErrStoreUnavailable:         http.StatusServiceUnavailable,
		bookings.ErrInternal:                 http.StatusInternalServerError,
	} {
		rec := post(router(&serviceStub{err: err}), "")
		assert.Equal(t, status, rec.Code, err.Error())
	}

	rec := post(router(&serviceStub{}), `{"reason":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
