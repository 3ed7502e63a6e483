package availability

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

// 2025-03-10 - понедельник
var (
	monday  = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	tuesday = monday.AddDate(0, 0, 1)
	// неделей раньше понедельника: срок в 7 дней не мешает
	farPast = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
)

func mondayTemplate() *domain.ScheduleTemplate {
	tpl := domain.DefaultTemplate(domain.TrackPostPurchase)
	tpl.ActiveDays = domain.NewWeekdaySet(time.Monday)
	tpl.Slots = []domain.TimeSlotDefinition{
		{ID: 1, Track: domain.TrackPostPurchase, Weekday: time.Monday, StartTime: "09:00", Capacity: 2, IsActive: true},
		{ID: 2, Track: domain.TrackPostPurchase, Weekday: time.Monday, StartTime: "10:00", Capacity: 1, IsActive: true},
		{ID: 3, Track: domain.TrackPostPurchase, Weekday: time.Tuesday, StartTime: "09:00", Capacity: 3, IsActive: true},
	}
	return tpl
}

func booking(date time.Time, start types.TimeString, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:            fmt.Sprintf("%s-%s-%s", date.Format(domain.DateFormat), start, status),
		Track:         domain.TrackPostPurchase,
		ClientID:      "client",
		ScheduledDate: date,
		ScheduledTime: start,
		Status:        status,
	}
}

func startTimes(slots []domain.AvailableSlot) []types.TimeString {
	out := make([]types.TimeString, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartTime)
	}
	return out
}

func TestListAvailableSlots_MondayScenario(t *testing.T) {
	tpl := mondayTemplate()
	opts := Options{Now: farPast}

	slots := ListAvailableSlots(tpl, NewSnapshot(domain.TrackPostPurchase, nil), monday, opts)

	require.Len(t, slots, 2)
	assert.Equal(t, types.TimeString("09:00"), slots[0].StartTime)
	assert.Equal(t, 2, slots[0].Remaining)
	assert.Equal(t, 2, slots[0].Capacity)
	assert.Equal(t, types.TimeString("10:00"), slots[1].StartTime)
	assert.Equal(t, 1, slots[1].Remaining)

	// одна запись на 10:00
	ledger := NewSnapshot(domain.TrackPostPurchase, []*domain.Booking{booking(monday, "10:00", domain.StatusScheduled)})

	raw := Occupancy(tpl, ledger, monday)
	require.Len(t, raw, 2)
	assert.Equal(t, 2, raw[0].Remaining)
	assert.Equal(t, 0, raw[1].Remaining)
	assert.True(t, raw[1].IsFull())

	slots = ListAvailableSlots(tpl, ledger, monday, opts)
	assert.Equal(t, []types.TimeString{"09:00"}, startTimes(slots))
	assert.False(t, IsSlotAvailable(tpl, ledger, monday, "10:00", opts))
}

func TestListAvailableSlots_InactiveDayYieldsNothing(t *testing.T) {
	tpl := mondayTemplate()

	slots := ListAvailableSlots(tpl, nil, tuesday, Options{Now: farPast})

	assert.Empty(t, slots)
	assert.NotNil(t, slots)
	assert.False(t, IsSlotAvailable(tpl, nil, tuesday, "09:00", Options{Now: farPast}))
}

func TestListAvailableSlots_OnlyScheduledBookingsCount(t *testing.T) {
	tpl := mondayTemplate()
	other := booking(monday, "10:00", domain.StatusScheduled)
	other.Track = domain.TrackPrePurchase

	ledger := NewSnapshot(domain.TrackPostPurchase, []*domain.Booking{
		booking(monday, "10:00", domain.StatusCancelled),
		booking(monday, "10:00", domain.StatusCompleted),
		other,
	})

	slots := ListAvailableSlots(tpl, ledger, monday, Options{Now: farPast})

	assert.Equal(t, []types.TimeString{"09:00", "10:00"}, startTimes(slots))
}

func TestListAvailableSlots_CancellationFreesCapacity(t *testing.T) {
	tpl := mondayTemplate()
	opts := Options{Now: farPast}
	before := ListAvailableSlots(tpl, NewSnapshot(domain.TrackPostPurchase, nil), monday, opts)

	b := booking(monday, "09:00", domain.StatusScheduled)
	during := ListAvailableSlots(tpl, NewSnapshot(domain.TrackPostPurchase, []*domain.Booking{b}), monday, opts)
	require.Equal(t, 1, during[0].Remaining)

	b.Status = domain.StatusCancelled
	after := ListAvailableSlots(tpl, NewSnapshot(domain.TrackPostPurchase, []*domain.Booking{b}), monday, opts)

	assert.Equal(t, before, after)
}

func TestListAvailableSlots_Idempotent(t *testing.T) {
	tpl := mondayTemplate()
	ledger := NewSnapshot(domain.TrackPostPurchase, []*domain.Booking{booking(monday, "09:00", domain.StatusScheduled)})
	opts := Options{Now: farPast}

	first := ListAvailableSlots(tpl, ledger, monday, opts)
	second := ListAvailableSlots(tpl, ledger, monday, opts)

	assert.Equal(t, first, second)
}

func TestIsSlotAvailable_ConsistentWithListing(t *testing.T) {
	tpl := mondayTemplate()
	tpl.ActiveDays = tpl.ActiveDays.With(time.Tuesday)
	tpl.Slots = append(tpl.Slots,
		domain.TimeSlotDefinition{ID: 4, Weekday: time.Monday, StartTime: "09:00", Capacity: 9, IsActive: true},
		domain.TimeSlotDefinition{ID: 5, Weekday: time.Monday, StartTime: "12:00", Capacity: 1, IsActive: false},
	)
	ledger := NewSnapshot(domain.TrackPostPurchase, []*domain.Booking{
		booking(monday, "09:00", domain.StatusScheduled),
		booking(monday, "09:00", domain.StatusScheduled),
		booking(tuesday, "09:00", domain.StatusScheduled),
	})

	nows := []Options{
		{Now: farPast},
		{Now: monday.Add(-7*24*time.Hour + 9*time.Hour + 30*time.Minute)},
		{Now: monday.Add(-7*24*time.Hour + 9*time.Hour + 30*time.Minute), BypassLeadTime: true},
	}

	for _, opts := range nows {
		for day := monday.AddDate(0, 0, -1); day.Before(monday.AddDate(0, 0, 3)); day = day.AddDate(0, 0, 1) {
			listed := map[types.TimeString]bool{}
			for _, s := range ListAvailableSlots(tpl, ledger, day, opts) {
				listed[s.StartTime] = true
			}
			for m := 0; m < 24*60; m += 30 {
				start, err := types.NewTimeStringFromMinutes(m)
				require.NoError(t, err)
				assert.Equal(t, listed[start], IsSlotAvailable(tpl, ledger, day, start, opts),
					"date=%s time=%s bypass=%v", day.Format(domain.DateFormat), start, opts.BypassLeadTime)
			}
		}
	}
}

func TestListAvailableDates_LeadTimeBoundary(t *testing.T) {
	tpl := mondayTemplate()
	tpl.Slots = tpl.Slots[1:2] // только понедельник 10:00
	slotAt := monday.Add(10 * time.Hour)
	from, to := monday.AddDate(0, 0, -7), monday

	justInside := Options{Now: slotAt.Add(-7*24*time.Hour + time.Minute)}
	dates, err := ListAvailableDates(tpl, nil, from, to, justInside)
	require.NoError(t, err)
	assert.Empty(t, dates, "7 days minus 1 minute is inside the lead window")

	exact := Options{Now: slotAt.Add(-7 * 24 * time.Hour)}
	dates, err = ListAvailableDates(tpl, nil, from, to, exact)
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, monday, dates[0].Date)
}

func TestListAvailableSlots_AdminBypassesLeadTimeButNotPast(t *testing.T) {
	tpl := mondayTemplate()
	now := monday.Add(9*time.Hour + 30*time.Minute)

	client := ListAvailableSlots(tpl, nil, monday, Options{Now: now})
	admin := ListAvailableSlots(tpl, nil, monday, Options{Now: now, BypassLeadTime: true})

	assert.Empty(t, client)
	assert.Equal(t, []types.TimeString{"10:00"}, startTimes(admin))
}

func TestListAvailableSlots_UsesLocation(t *testing.T) {
	tpl := mondayTemplate()
	tpl.MinLeadTimeMinutes = 0
	loc := time.FixedZone("UTC-3", -3*60*60)
	// 11:30 UTC = 08:30 по местному времени: оба слота ещё впереди
	now := monday.Add(11*time.Hour + 30*time.Minute)

	utc := ListAvailableSlots(tpl, nil, monday, Options{Now: now})
	local := ListAvailableSlots(tpl, nil, monday, Options{Now: now, Location: loc})

	assert.Empty(t, utc)
	assert.Equal(t, []types.TimeString{"09:00", "10:00"}, startTimes(local))
}

func TestListAvailableDates(t *testing.T) {
	tpl := mondayTemplate()
	tpl.ActiveDays = tpl.ActiveDays.With(time.Tuesday)
	ledger := NewSnapshot(domain.TrackPostPurchase, []*domain.Booking{
		booking(monday.AddDate(0, 0, 7), "09:00", domain.StatusScheduled),
		booking(monday.AddDate(0, 0, 7), "09:00", domain.StatusScheduled),
		booking(monday.AddDate(0, 0, 7), "10:00", domain.StatusScheduled),
	})

	dates, err := ListAvailableDates(tpl, ledger, monday, monday.AddDate(0, 0, 13), Options{Now: farPast})

	require.NoError(t, err)
	got := make([]string, 0, len(dates))
	for _, d := range dates {
		got = append(got, d.Date.Format(domain.DateFormat))
	}
	assert.Equal(t, []string{"2025-03-10", "2025-03-11", "2025-03-18"}, got)
	assert.Equal(t, 2, dates[0].SlotsAvailable)
}

func TestListAvailableDates_SingleDayAndInvalidRange(t *testing.T) {
	tpl := mondayTemplate()

	dates, err := ListAvailableDates(tpl, nil, monday, monday, Options{Now: farPast})
	require.NoError(t, err)
	assert.Len(t, dates, 1)

	_, err = ListAvailableDates(tpl, nil, tuesday, monday, Options{Now: farPast})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestListAvailableSlots_NilTemplate(t *testing.T) {
	assert.Empty(t, ListAvailableSlots(nil, nil, monday, Options{Now: farPast}))
	assert.Empty(t, Occupancy(nil, nil, monday))
}
