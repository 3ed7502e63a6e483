package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ConsultationService/internal/integrations/userservice"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings/models"
	"github.com/m04kA/SMC-ConsultationService/pkg/logger"
	"github.com/m04kA/SMC-ConsultationService/pkg/ptr"
)

// 2025-03-10 - понедельник
var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type userClientMock struct{ mock.Mock }

func (m *userClientMock) ResolveUser(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

type meetingClientMock struct{ mock.Mock }

func (m *meetingClientMock) CloseRoom(ctx context.Context, roomID string) error {
	return m.Called(ctx, roomID).Error(0)
}

type cancelRecorder struct {
	mu     sync.Mutex
	actors []string
}

func (r *cancelRecorder) IncBookingCancelled(_ string, actor string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actors = append(r.actors, actor)
}

type fixture struct {
	ledger   *memory.Ledger
	users    *userClientMock
	meetings *meetingClientMock
	metrics  *cancelRecorder
	svc      *Service
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		ledger:   memory.NewLedger(),
		users:    &userClientMock{},
		meetings: &meetingClientMock{},
		metrics:  &cancelRecorder{},
	}

	for _, u := range []*domain.User{
		{ID: "client-1", Role: domain.RoleClient},
		{ID: "client-2", Role: domain.RoleClient},
		{ID: "admin-1", Role: domain.RoleAdmin},
		{ID: "spec-1", Role: domain.RoleSpecialist},
		{ID: "spec-2", Role: domain.RoleSpecialist},
	} {
		f.users.On("ResolveUser", mock.Anything, u.ID).Return(u, nil)
	}
	f.users.On("ResolveUser", mock.Anything, "ghost").Return(nil, userservice.ErrUserNotFound)
	f.meetings.On("CloseRoom", mock.Anything, mock.Anything).Return(nil)

	f.ledger.Put(&domain.Booking{
		ID: "b1", Track: domain.TrackPostPurchase, ClientID: "client-1", SpecialistID: ptr.Ptr("spec-1"),
		ScheduledDate: monday, ScheduledTime: "10:00", DurationMinutes: 60,
		Status: domain.StatusScheduled, RoomID: ptr.Ptr("room-1"),
	})
	f.ledger.Put(&domain.Booking{
		ID: "b2", Track: domain.TrackPrePurchase, ClientID: "client-2",
		ScheduledDate: monday.AddDate(0, 0, 1), ScheduledTime: "09:00", DurationMinutes: 60,
		Status: domain.StatusCompleted,
	})

	f.svc = NewService(
		f.ledger,
		memory.NewTemplates(),
		f.users,
		f.meetings,
		&memory.TxManager{},
		f.metrics,
		time.UTC,
		logger.NewNop(),
	).WithTimeProvider(fixedTime{now: now})

	return f
}

func TestGetByID_Access(t *testing.T) {
	f := newFixture(monday)

	for _, actor := range []string{"client-1", "spec-1", "admin-1"} {
		resp, err := f.svc.GetByID(context.Background(), "b1", actor)
		require.NoError(t, err, actor)
		assert.Equal(t, "b1", resp.ID)
		assert.Equal(t, "2025-03-10", resp.ScheduledDate)
		assert.Equal(t, "10:00", resp.ScheduledTime)
	}

	_, err := f.svc.GetByID(context.Background(), "b1", "client-2")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetByID(context.Background(), "b1", "spec-2")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetByID(context.Background(), "missing", "admin-1")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetUserBookings(t *testing.T) {
	f := newFixture(monday)

	resp, err := f.svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{ActorID: "client-1", UserID: "client-1"})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "b1", resp.Bookings[0].ID)

	resp, err = f.svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{ActorID: "spec-1", UserID: "spec-1"})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)

	resp, err = f.svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		ActorID: "admin-1", UserID: "client-2", Status: ptr.Ptr("scheduled"),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Bookings)

	_, err = f.svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{ActorID: "client-2", UserID: "client-1"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		ActorID: "client-1", UserID: "client-1", Status: ptr.Ptr("rescheduled"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetTrackBookings(t *testing.T) {
	f := newFixture(monday)

	resp, err := f.svc.GetTrackBookings(context.Background(), &models.GetTrackBookingsRequest{
		ActorID: "admin-1", Track: ptr.Ptr("pre_purchase"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "b2", resp.Bookings[0].ID)

	_, err = f.svc.GetTrackBookings(context.Background(), &models.GetTrackBookingsRequest{ActorID: "spec-1"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetTrackBookings(context.Background(), &models.GetTrackBookingsRequest{ActorID: "admin-1", Track: ptr.Ptr("vip")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	from, to := monday.AddDate(0, 0, 2), monday
	_, err = f.svc.GetTrackBookings(context.Background(), &models.GetTrackBookingsRequest{ActorID: "admin-1", StartDate: &from, EndDate: &to})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancel_ClientBeforeWindow(t *testing.T) {
	// за двое суток до начала, срок отмены по умолчанию 24 часа
	f := newFixture(monday.Add(10*time.Hour - 48*time.Hour))

	resp, err := f.svc.Cancel(context.Background(), "b1", &models.CancelBookingRequest{
		ActorID:            "client-1",
		CancellationReason: ptr.Ptr(" не успеваю "),
	})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, "не успеваю", ptr.Value(resp.CancellationReason))
	assert.Equal(t, "client", ptr.Value(resp.CancelledBy))
	assert.Equal(t, 0, f.ledger.CountScheduled(domain.TrackPostPurchase, monday, "10:00"))
	assert.Equal(t, []string{"client"}, f.metrics.actors)
	f.meetings.AssertCalled(t, "CloseRoom", mock.Anything, "room-1")
}

func TestCancel_Rules(t *testing.T) {
	insideWindow := monday.Add(10*time.Hour - time.Hour)

	tests := []struct {
		name    string
		actor   string
		wantErr error
	}{
		{name: "client inside window", actor: "client-1", wantErr: ErrCancellationWindowClosed},
		{name: "foreign client", actor: "client-2", wantErr: ErrAccessDenied},
		{name: "unknown user", actor: "ghost", wantErr: ErrAccessDenied},
		{name: "assigned specialist", actor: "spec-1"},
		{name: "not assigned specialist", actor: "spec-2"},
		{name: "admin", actor: "admin-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(insideWindow)

			_, err := f.svc.Cancel(context.Background(), "b1", &models.CancelBookingRequest{ActorID: tt.actor})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 1, f.ledger.CountScheduled(domain.TrackPostPurchase, monday, "10:00"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, f.ledger.CountScheduled(domain.TrackPostPurchase, monday, "10:00"))
		})
	}
}

func TestCancel_NotScheduled(t *testing.T) {
	f := newFixture(monday)

	_, err := f.svc.Cancel(context.Background(), "b2", &models.CancelBookingRequest{ActorID: "admin-1"})
	assert.ErrorIs(t, err, ErrCannotCancel)

	_, err = f.svc.Cancel(context.Background(), "missing", &models.CancelBookingRequest{ActorID: "admin-1"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestAssignSpecialist(t *testing.T) {
	f := newFixture(monday)

	resp, err := f.svc.AssignSpecialist(context.Background(), "b1", &models.AssignSpecialistRequest{ActorID: "admin-1", SpecialistID: "spec-2"})
	require.NoError(t, err)
	assert.Equal(t, "spec-2", ptr.Value(resp.SpecialistID))
	// вместимость не затронута
	assert.Equal(t, 1, f.ledger.CountScheduled(domain.TrackPostPurchase, monday, "10:00"))

	_, err = f.svc.AssignSpecialist(context.Background(), "b1", &models.AssignSpecialistRequest{ActorID: "admin-1", SpecialistID: "client-2"})
	assert.ErrorIs(t, err, ErrSpecialistNotFound)

	_, err = f.svc.AssignSpecialist(context.Background(), "b1", &models.AssignSpecialistRequest{ActorID: "admin-1", SpecialistID: "ghost"})
	assert.ErrorIs(t, err, ErrSpecialistNotFound)

	_, err = f.svc.AssignSpecialist(context.Background(), "b1", &models.AssignSpecialistRequest{ActorID: "client-1", SpecialistID: "spec-2"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.AssignSpecialist(context.Background(), "b2", &models.AssignSpecialistRequest{ActorID: "admin-1", SpecialistID: "spec-2"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.AssignSpecialist(context.Background(), "missing", &models.AssignSpecialistRequest{ActorID: "admin-1", SpecialistID: "spec-2"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestComplete(t *testing.T) {
	f := newFixture(monday)

	resp, err := f.svc.Complete(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.NotNil(t, resp.CompletedAt)

	_, err = f.svc.Complete(context.Background(), "b1")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.Complete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
