package create_booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/infra/lock"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ConsultationService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ConsultationService/internal/integrations/meetingservice"
	"github.com/m04kA/SMC-ConsultationService/internal/integrations/userservice"
	"github.com/m04kA/SMC-ConsultationService/pkg/logger"
	"github.com/m04kA/SMC-ConsultationService/pkg/ptr"
	"github.com/m04kA/SMC-ConsultationService/pkg/types"
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

func (m *meetingClientMock) CreateRoom(ctx context.Context, in meetingservice.CreateRoomRequest) (*meetingservice.Room, error) {
	args := m.Called(ctx, in)
	r, _ := args.Get(0).(*meetingservice.Room)
	return r, args.Error(1)
}

func (m *meetingClientMock) CloseRoom(ctx context.Context, roomID string) error {
	return m.Called(ctx, roomID).Error(0)
}

type noLock struct{}

func (noLock) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

type timeoutLock struct{}

func (timeoutLock) Acquire(context.Context, string) (func(), error) {
	return nil, fmt.Errorf("lock.Guard.Acquire: %w", lock.ErrLockTimeout)
}

type recorder struct {
	mu        sync.Mutex
	created   int
	manual    int
	conflicts int
}

func (r *recorder) IncBookingCreated(_ string, manual bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
	if manual {
		r.manual++
	}
}

func (r *recorder) IncSlotConflict(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts++
}

type fixture struct {
	ledger   *memory.Ledger
	coupons  *memory.Coupons
	users    *userClientMock
	meetings *meetingClientMock
	metrics  *recorder
	uc       *UseCase
}

func template() *domain.ScheduleTemplate {
	tpl := domain.DefaultTemplate(domain.TrackPostPurchase)
	tpl.ActiveDays = domain.NewWeekdaySet(time.Monday)
	tpl.Slots = []domain.TimeSlotDefinition{
		{ID: 1, Weekday: time.Monday, StartTime: "09:00", Capacity: 2, IsActive: true},
		{ID: 2, Weekday: time.Monday, StartTime: "10:00", Capacity: 1, IsActive: true},
		// вторник не входит в активные дни
		{ID: 3, Weekday: time.Tuesday, StartTime: "10:00", Capacity: 5, IsActive: true},
	}
	return tpl
}

func newFixture(now time.Time, locker SlotLocker, coupons ...*domain.Coupon) *fixture {
	f := &fixture{
		ledger:   memory.NewLedger(),
		coupons:  memory.NewCoupons(coupons...),
		users:    &userClientMock{},
		meetings: &meetingClientMock{},
		metrics:  &recorder{},
	}

	for _, u := range []*domain.User{
		{ID: "client-1", Role: domain.RoleClient},
		{ID: "client-2", Role: domain.RoleClient},
		{ID: "admin-1", Role: domain.RoleAdmin},
		{ID: "spec-1", Role: domain.RoleSpecialist},
	} {
		f.users.On("ResolveUser", mock.Anything, u.ID).Return(u, nil)
	}
	f.users.On("ResolveUser", mock.Anything, "ghost").Return(nil, userservice.ErrUserNotFound)
	f.users.On("ResolveUser", mock.Anything, "flaky").Return(nil, userservice.ErrUnavailable)

	f.uc = NewUseCase(
		f.ledger,
		memory.NewTemplates(template()),
		f.coupons,
		f.users,
		f.meetings,
		locker,
		&memory.TxManager{},
		f.metrics,
		time.UTC,
		logger.NewNop(),
	).WithTimeProvider(fixedTime{now: now})

	return f
}

func (f *fixture) roomsOK() *fixture {
	f.meetings.On("CreateRoom", mock.Anything, mock.Anything).
		Return(&meetingservice.Room{ID: "room-1", JoinURL: "https://meet.local/room-1"}, nil)
	return f
}

func request(actor string, start types.TimeString) *Request {
	return &Request{
		ActorID:   actor,
		Track:     domain.TrackPostPurchase,
		Date:      monday,
		StartTime: start,
	}
}

var twoWeeksBefore = monday.AddDate(0, 0, -14)

func TestExecute_Success(t *testing.T) {
	f := newFixture(twoWeeksBefore, noLock{}).roomsOK()

	req := request("client-1", "10:00")
	req.Description = ptr.Ptr("  первая консультация ")
	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	b := resp.Booking
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "client-1", b.ClientID)
	assert.Equal(t, domain.StatusScheduled, b.Status)
	assert.Equal(t, 60, b.DurationMinutes)
	assert.Equal(t, "первая консультация", ptr.Value(b.Description))
	assert.Equal(t, "room-1", ptr.Value(b.RoomID))
	assert.Equal(t, "https://meet.local/room-1", resp.JoinURL)
	assert.Equal(t, monday.Add(10*time.Hour-5*time.Minute), resp.RoomOpensAt)
	assert.Equal(t, 1, f.metrics.created)

	f.meetings.AssertCalled(t, "CreateRoom", mock.Anything, mock.MatchedBy(func(in meetingservice.CreateRoomRequest) bool {
		return in.BookingID == b.ID &&
			in.ScheduledAt.Equal(monday.Add(10*time.Hour)) &&
			in.OpensAt.Equal(monday.Add(10*time.Hour-5*time.Minute))
	}))
}

func TestExecute_SecondBookingOfFullSlotFails(t *testing.T) {
	f := newFixture(twoWeeksBefore, noLock{}).roomsOK()

	_, err := f.uc.Execute(context.Background(), request("client-1", "10:00"))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), request("client-2", "10:00"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, 1, f.ledger.CountScheduled(domain.TrackPostPurchase, monday, "10:00"))
	assert.Equal(t, 1, f.metrics.conflicts)

	// 09:00 вмещает двоих
	_, err = f.uc.Execute(context.Background(), request("client-1", "09:00"))
	require.NoError(t, err)
	_, err = f.uc.Execute(context.Background(), request("client-2", "09:00"))
	require.NoError(t, err)
	_, err = f.uc.Execute(context.Background(), request("client-2", "09:00"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_CancelledBookingDoesNotHoldSlot(t *testing.T) {
	f := newFixture(twoWeeksBefore, noLock{}).roomsOK()
	f.ledger.Put(&domain.Booking{
		ID: "old", Track: domain.TrackPostPurchase, ClientID: "client-2",
		ScheduledDate: monday, ScheduledTime: "10:00", Status: domain.StatusCancelled,
	})

	_, err := f.uc.Execute(context.Background(), request("client-1", "10:00"))

	require.NoError(t, err)
}

func TestExecute_ConcurrentLastSpot(t *testing.T) {
	tests := []struct {
		name   string
		locker func() SlotLocker
		naive  bool
	}{
		{
			name:   "atomic insert without lock",
			locker: func() SlotLocker { return noLock{} },
		},
		{
			// проверка и вставка в хранилище не атомарны, спасает блокировка слота
			name:   "naive insert with slot lock",
			locker: func() SlotLocker { return lock.NewGuard(lock.NewLocalLock(), 5*time.Second, 5*time.Second) },
			naive:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(twoWeeksBefore, tt.locker()).roomsOK()
			if tt.naive {
				f.ledger.SkipCapacityCheck = true
				f.ledger.InsertDelay = 20 * time.Millisecond
			}

			var (
				wg   sync.WaitGroup
				errs = make([]error, 2)
			)
			for i, client := range []string{"client-1", "client-2"} {
				wg.Add(1)
				go func(i int, client string) {
					defer wg.Done()
					_, errs[i] = f.uc.Execute(context.Background(), request(client, "10:00"))
				}(i, client)
			}
			wg.Wait()

			succeeded, unavailable := 0, 0
			for _, err := range errs {
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, ErrSlotNotAvailable):
					unavailable++
				}
			}
			assert.Equal(t, 1, succeeded)
			assert.Equal(t, 1, unavailable)
			assert.Equal(t, 1, f.ledger.CountScheduled(domain.TrackPostPurchase, monday, "10:00"))
		})
	}
}

// keyRecorder запоминает ключи, под которыми берётся блокировка слота
type keyRecorder struct {
	SlotLocker
	mu   sync.Mutex
	keys []string
}

func (r *keyRecorder) Acquire(ctx context.Context, key string) (func(), error) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
	return r.SlotLocker.Acquire(ctx, key)
}

func TestExecute_EquivalentTimesShareSlotLock(t *testing.T) {
	locker := &keyRecorder{SlotLocker: lock.NewGuard(lock.NewLocalLock(), 5*time.Second, 5*time.Second)}
	f := newFixture(twoWeeksBefore, locker).roomsOK()
	// без атомарной вставки вместимость держится только на блокировке слота
	f.ledger.SkipCapacityCheck = true
	f.ledger.InsertDelay = 20 * time.Millisecond

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i, start := range []types.TimeString{"10:00", "10:00:00"} {
		wg.Add(1)
		go func(i int, start types.TimeString) {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(context.Background(), request(fmt.Sprintf("client-%d", i+1), start))
		}(i, start)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.ledger.CountScheduled(domain.TrackPostPurchase, monday, "10:00"))

	require.Len(t, locker.keys, 2)
	assert.Equal(t, "slot:post-purchase:2025-03-10:10:00", locker.keys[0])
	assert.Equal(t, locker.keys[0], locker.keys[1])
}

func TestExecute_StoresCanonicalStartTime(t *testing.T) {
	f := newFixture(twoWeeksBefore, noLock{}).roomsOK()

	resp, err := f.uc.Execute(context.Background(), request("client-1", "10:00:00"))

	require.NoError(t, err)
	assert.Equal(t, types.TimeString("10:00"), resp.Booking.ScheduledTime)
}

func TestExecute_MalformedSecondsRejected(t *testing.T) {
	f := newFixture(twoWeeksBefore, noLock{}).roomsOK()

	_, err := f.uc.Execute(context.Background(), request("client-1", "10:00:zz"))

	assert.ErrorIs(t, err, ErrInvalidTime)
	assert.Equal(t, 0, f.ledger.CountScheduled(domain.TrackPostPurchase, monday, "10:00"))
}

func TestExecute_BurstNeverExceedsCapacity(t *testing.T) {
	f := newFixture(twoWeeksBefore, lock.NewGuard(lock.NewLocalLock(), 5*time.Second, 10*time.Second)).roomsOK()

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.uc.Execute(context.Background(), request("client-1", "09:00")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 2, f.ledger.CountScheduled(domain.TrackPostPurchase, monday, "09:00"))
}

func TestExecute_LeadTime(t *testing.T) {
	// до консультации сутки, минимальный срок направления 7 дней
	now := monday.Add(10*time.Hour - 24*time.Hour)

	t.Run("client is rejected", func(t *testing.T) {
		f := newFixture(now, noLock{}).roomsOK()

		_, err := f.uc.Execute(context.Background(), request("client-1", "10:00"))
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})

	t.Run("admin books manually", func(t *testing.T) {
		f := newFixture(now, noLock{}).roomsOK()

		req := request("admin-1", "10:00")
		req.ClientID = "client-1"
		req.DurationMinutes = ptr.Ptr(90)
		resp, err := f.uc.Execute(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "client-1", resp.Booking.ClientID)
		assert.Equal(t, 90, resp.Booking.DurationMinutes)
		assert.Equal(t, 1, f.metrics.manual)
	})

	t.Run("admin cannot book the past", func(t *testing.T) {
		f := newFixture(monday.Add(11*time.Hour), noLock{}).roomsOK()

		req := request("admin-1", "10:00")
		req.ClientID = "client-1"
		_, err := f.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})
}

func TestExecute_Access(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
	}{
		{name: "specialist cannot book", mutate: func(r *Request) { r.ActorID = "spec-1" }, wantErr: ErrAccessDenied},
		{name: "client books for another client", mutate: func(r *Request) { r.ClientID = "client-2" }, wantErr: ErrAccessDenied},
		{name: "client overrides duration", mutate: func(r *Request) { r.DurationMinutes = ptr.Ptr(30) }, wantErr: ErrAccessDenied},
		{name: "unknown actor", mutate: func(r *Request) { r.ActorID = "ghost" }, wantErr: ErrAccessDenied},
		{name: "user service down", mutate: func(r *Request) { r.ActorID = "flaky" }, wantErr: ErrDependencyUnavailable},
		{name: "admin books for unknown client", mutate: func(r *Request) { r.ActorID = "admin-1"; r.ClientID = "ghost" }, wantErr: ErrClientNotFound},
		{name: "admin books for specialist", mutate: func(r *Request) { r.ActorID = "admin-1"; r.ClientID = "spec-1" }, wantErr: ErrClientNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(twoWeeksBefore, noLock{}).roomsOK()
			req := request("client-1", "10:00")
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, f.ledger.CountScheduled(domain.TrackPostPurchase, monday, "10:00"))
		})
	}
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
	}{
		{name: "unknown track", mutate: func(r *Request) { r.Track = "vip" }, wantErr: ErrInvalidTrack},
		{name: "no date", mutate: func(r *Request) { r.Date = time.Time{} }, wantErr: ErrInvalidDate},
		{name: "malformed time", mutate: func(r *Request) { r.StartTime = "25:00" }, wantErr: ErrInvalidTime},
		{name: "no time", mutate: func(r *Request) { r.StartTime = "" }, wantErr: ErrInvalidTime},
		{name: "duration too long", mutate: func(r *Request) { r.DurationMinutes = ptr.Ptr(1000) }, wantErr: ErrInvalidDuration},
		{name: "empty coupon", mutate: func(r *Request) { r.CouponCode = ptr.Ptr("  ") }, wantErr: ErrCouponInvalid},
		{name: "no actor", mutate: func(r *Request) { r.ActorID = "" }, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(twoWeeksBefore, noLock{})
			req := request("client-1", "10:00")
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)

			assert.ErrorIs(t, err, tt.wantErr)
			f.users.AssertNotCalled(t, "ResolveUser", mock.Anything, mock.Anything)
		})
	}
}

func TestExecute_SlotOutsideTemplate(t *testing.T) {
	f := newFixture(twoWeeksBefore, noLock{}).roomsOK()

	_, err := f.uc.Execute(context.Background(), request("client-1", "11:00"))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	req := request("client-1", "10:00")
	req.Date = monday.AddDate(0, 0, 1)
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_Coupons(t *testing.T) {
	expiredAt := twoWeeksBefore.Add(-time.Hour)
	coupons := []*domain.Coupon{
		{ID: 1, Code: "FREE30", IsActive: true, FreeMinutes: ptr.Ptr(30), UsageLimit: ptr.Ptr(5)},
		{ID: 2, Code: "OLD", IsActive: true, ValidUntil: &expiredAt},
		{ID: 3, Code: "USED", IsActive: true, UsageLimit: ptr.Ptr(1), UsageCount: 1},
		{ID: 4, Code: "BIG", IsActive: true, MinPurchaseAmount: ptr.Ptr(1000.0)},
		{ID: 5, Code: "OFF", IsActive: false},
	}

	t.Run("valid coupon is charged", func(t *testing.T) {
		f := newFixture(twoWeeksBefore, noLock{}, coupons...).roomsOK()

		req := request("client-1", "10:00")
		req.CouponCode = ptr.Ptr("free30")
		resp, err := f.uc.Execute(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, int64(1), ptr.Value(resp.Booking.CouponID))
		assert.Equal(t, "FREE30", ptr.Value(resp.Booking.CouponCode))
		assert.Equal(t, 30, resp.Booking.DurationMinutes)
		assert.Equal(t, 1, f.coupons.UsageCount(1))
	})

	invalid := []struct {
		code   string
		amount *float64
	}{
		{code: "OLD"},
		{code: "USED"},
		{code: "BIG", amount: ptr.Ptr(999.0)},
		{code: "BIG"},
		{code: "OFF"},
		{code: "MISSING"},
	}
	for _, tt := range invalid {
		t.Run("rejects "+tt.code, func(t *testing.T) {
			f := newFixture(twoWeeksBefore, noLock{}, coupons...).roomsOK()

			req := request("client-1", "10:00")
			req.CouponCode = ptr.Ptr(tt.code)
			req.PurchaseAmount = tt.amount
			_, err := f.uc.Execute(context.Background(), req)

			assert.ErrorIs(t, err, ErrCouponInvalid)
			assert.Equal(t, 0, f.ledger.CountScheduled(domain.TrackPostPurchase, monday, "10:00"))
		})
	}

	t.Run("minimum met", func(t *testing.T) {
		f := newFixture(twoWeeksBefore, noLock{}, coupons...).roomsOK()

		req := request("client-1", "10:00")
		req.CouponCode = ptr.Ptr("BIG")
		req.PurchaseAmount = ptr.Ptr(1000.0)
		_, err := f.uc.Execute(context.Background(), req)

		require.NoError(t, err)
	})
}

func TestExecute_RoomFailureCompensates(t *testing.T) {
	f := newFixture(twoWeeksBefore, noLock{}, &domain.Coupon{ID: 1, Code: "FREE30", IsActive: true})
	f.meetings.On("CreateRoom", mock.Anything, mock.Anything).Return(nil, meetingservice.ErrUnavailable)

	req := request("client-1", "10:00")
	req.CouponCode = ptr.Ptr("FREE30")
	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrRoomProvisioning)
	assert.Equal(t, 0, f.ledger.CountScheduled(domain.TrackPostPurchase, monday, "10:00"))
	assert.Equal(t, 0, f.coupons.UsageCount(1))
	assert.Equal(t, 0, f.metrics.created)

	list, err := f.ledger.List(context.Background(), domain.BookingsFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.StatusCancelled, list[0].Status)
	assert.Equal(t, domain.RoleSystem, ptr.Value(list[0].CancelledBy))
}

func TestExecute_InheritedFromReschedule(t *testing.T) {
	f := newFixture(twoWeeksBefore, noLock{}, &domain.Coupon{ID: 7, Code: "FREE30", IsActive: true, UsageCount: 1}).roomsOK()

	req := request("client-1", "09:00")
	req.Inherited = &Inherited{
		RescheduledFrom: "old-booking",
		DurationMinutes: 30,
		Coupon:          &domain.CouponRef{ID: 7, Code: "FREE30"},
	}
	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "old-booking", ptr.Value(resp.Booking.RescheduledFrom))
	assert.Equal(t, 30, resp.Booking.DurationMinutes)
	assert.Equal(t, int64(7), ptr.Value(resp.Booking.CouponID))
	// повторно не списывается
	assert.Equal(t, 1, f.coupons.UsageCount(7))
}

func TestExecute_Errors(t *testing.T) {
	t.Run("slot busy", func(t *testing.T) {
		f := newFixture(twoWeeksBefore, timeoutLock{}).roomsOK()

		_, err := f.uc.Execute(context.Background(), request("client-1", "10:00"))
		assert.ErrorIs(t, err, ErrSlotBusy)
	})

	t.Run("store unavailable", func(t *testing.T) {
		f := newFixture(twoWeeksBefore, noLock{}).roomsOK()
		f.ledger.Err = bookingRepo.ErrStoreUnavailable

		_, err := f.uc.Execute(context.Background(), request("client-1", "10:00"))
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		f.meetings.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything)
	})
}
