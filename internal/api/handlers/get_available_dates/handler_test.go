package get_available_dates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	getAvailableDates "github.com/m04kA/SMC-ConsultationService/internal/usecase/get_available_dates"
	"github.com/m04kA/SMC-ConsultationService/pkg/logger"
)

type useCaseStub struct {
	got *getAvailableDates.Request
	err error
}

func (s *useCaseStub) Execute(_ context.Context, req *getAvailableDates.Request) (*getAvailableDates.Response, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &getAvailableDates.Response{
		Track: req.Track,
		From:  req.From,
		To:    req.To,
		Dates: []domain.AvailableDate{{Date: req.From, SlotsAvailable: 3}},
	}, nil
}

func get(h *Handler, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/tracks/{track}/available-dates", h.Handle).Methods(http.MethodGet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandle_OK(t *testing.T) {
	stub := &useCaseStub{}

	rec := get(NewAdminHandler(stub, logger.NewNop()), "/tracks/pre-purchase/available-dates?from=2025-03-10&to=2025-03-16")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TrackPrePurchase, stub.got.Track)
	assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), stub.got.To)
	assert.True(t, stub.got.BypassLeadTime)

	var resp AvailableDatesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "2025-03-10", resp.From)
	require.Len(t, resp.Dates, 1)
	assert.Equal(t, AvailableDate{Date: "2025-03-10", SlotsAvailable: 3}, resp.Dates[0])
}

func TestHandle_Errors(t *testing.T) {
	const valid = "/tracks/post-purchase/available-dates?from=2025-03-10&to=2025-03-16"

	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{name: "unknown track", target: "/tracks/vip/available-dates?from=2025-03-10&to=2025-03-16", status: http.StatusBadRequest},
		{name: "missing to", target: "/tracks/post-purchase/available-dates?from=2025-03-10", status: http.StatusBadRequest},
		{name: "bad from", target: "/tracks/post-purchase/available-dates?from=10.03.2025&to=2025-03-16", status: http.StatusBadRequest},
		{name: "inverted range", target: valid, err: getAvailableDates.ErrInvalidRange, status: http.StatusBadRequest},
		{name: "range too large", target: valid, err: getAvailableDates.ErrRangeTooLarge, status: http.StatusBadRequest},
		{name: "store down", target: valid, err: getAvailableDates.ErrStoreUnavailable, status: http.StatusServiceUnavailable},
		{name: "internal", target: valid, err: getAvailableDates.ErrInternal, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &useCaseStub{err: tt.err}

			rec := get(NewHandler(stub, logger.NewNop()), tt.target)

			assert.Equal(t, tt.status, rec.Code)
			if tt.err == nil {
				assert.Nil(t, stub.got)
			}
		})
	}
}
