package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/pkg/ptr"
)

func TestParseTrack(t *testing.T) {
	track, err := ParseTrack("post_purchase")
	require.NoError(t, err)
	assert.Equal(t, TrackPostPurchase, track)

	track, err = ParseTrack("Pre-Purchase")
	require.NoError(t, err)
	assert.Equal(t, TrackPrePurchase, track)

	_, err = ParseTrack("warranty")
	assert.ErrorIs(t, err, ErrUnknownTrack)
}

func TestWeekdaySet(t *testing.T) {
	s := NewWeekdaySet(time.Monday, time.Friday)

	assert.True(t, s.Has(time.Monday))
	assert.False(t, s.Has(time.Tuesday))
	assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, s.Days())

	s = s.Without(time.Monday).With(time.Sunday)
	assert.Equal(t, []time.Weekday{time.Sunday, time.Friday}, s.Days())
}

func TestScheduleTemplate_ActiveSlotsFor(t *testing.T) {
	tpl := &ScheduleTemplate{
		Slots: []TimeSlotDefinition{
			{ID: 1, Weekday: time.Monday, StartTime: "10:00", Capacity: 1, IsActive: true},
			{ID: 2, Weekday: time.Monday, StartTime: "09:00", Capacity: 2, IsActive: true},
			{ID: 3, Weekday: time.Monday, StartTime: "11:00", Capacity: 1, IsActive: false},
			{ID: 4, Weekday: time.Tuesday, StartTime: "09:00", Capacity: 1, IsActive: true},
			{ID: 5, Weekday: time.Monday, StartTime: "09:00", Capacity: 5, IsActive: true},
		},
	}

	slots := tpl.ActiveSlotsFor(time.Monday)

	require.Len(t, slots, 2)
	assert.Equal(t, int64(2), slots[0].ID, "first inserted wins the tie")
	assert.Equal(t, int64(1), slots[1].ID)
}

func TestDefaultTemplate_LeadTimes(t *testing.T) {
	assert.Equal(t, 3*24*60, DefaultTemplate(TrackPrePurchase).MinLeadTimeMinutes)
	assert.Equal(t, 7*24*time.Hour, DefaultTemplate(TrackPostPurchase).MinLeadTime())
	assert.Equal(t, 24*time.Hour, DefaultTemplate(TrackPostPurchase).CancellationLeadTime())
}

func TestCoupon_Rules(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	c := &Coupon{
		IsActive:          true,
		ValidUntil:        ptr.Ptr(now.Add(-time.Hour)),
		UsageLimit:        ptr.Ptr(3),
		UsageCount:        3,
		MinPurchaseAmount: ptr.Ptr(100.0),
	}

	assert.True(t, c.IsExpired(now))
	assert.True(t, c.IsExhausted())
	assert.False(t, c.MeetsMinimum(nil))
	assert.False(t, c.MeetsMinimum(ptr.Ptr(99.99)))
	assert.True(t, c.MeetsMinimum(ptr.Ptr(100.0)))
}

func TestBooking_RoomOpensAt(t *testing.T) {
	b := &Booking{
		ScheduledDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "10:00",
	}

	assert.Equal(t, time.Date(2025, 3, 10, 9, 55, 0, 0, time.UTC), b.RoomOpensAt(time.UTC))
}

func TestCheckCancel(t *testing.T) {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	b := &Booking{
		ID:            "b1",
		ClientID:      "client-1",
		SpecialistID:  ptr.Ptr("spec-1"),
		ScheduledDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "10:00",
		Status:        StatusScheduled,
	}
	lead := 24 * time.Hour

	tests := []struct {
		name    string
		actor   User
		now     time.Time
		wantErr error
	}{
		{name: "client before window", actor: User{ID: "client-1", Role: RoleClient}, now: start.Add(-lead - time.Minute)},
		{name: "client at window edge", actor: User{ID: "client-1", Role: RoleClient}, now: start.Add(-lead), wantErr: ErrCancellationWindowClosed},
		{name: "other client", actor: User{ID: "client-2", Role: RoleClient}, now: start.Add(-48 * time.Hour), wantErr: ErrNotOwner},
		{name: "assigned specialist late", actor: User{ID: "spec-1", Role: RoleSpecialist}, now: start.Add(-time.Hour)},
		{name: "unassigned specialist late", actor: User{ID: "spec-2", Role: RoleSpecialist}, now: start.Add(-time.Hour)},
		{name: "admin after start", actor: User{ID: "admin", Role: RoleAdmin}, now: start.Add(time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCancel(b, &tt.actor, lead, tt.now, time.UTC)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	cancelled := *b
	cancelled.Status = StatusCancelled
	assert.ErrorIs(t, CheckCancel(&cancelled, &User{ID: "admin", Role: RoleAdmin}, lead, start, time.UTC), ErrBookingNotActive)
}
