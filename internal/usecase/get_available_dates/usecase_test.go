package get_available_dates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ConsultationService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ConsultationService/pkg/logger"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// 2025-03-10 - понедельник
var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func template() *domain.ScheduleTemplate {
	tpl := domain.DefaultTemplate(domain.TrackPostPurchase)
	tpl.ActiveDays = domain.NewWeekdaySet(time.Monday, time.Wednesday)
	tpl.Slots = []domain.TimeSlotDefinition{
		{ID: 1, Weekday: time.Monday, StartTime: "10:00", Capacity: 1, IsActive: true},
		{ID: 2, Weekday: time.Wednesday, StartTime: "10:00", Capacity: 1, IsActive: true},
	}
	return tpl
}

func newUseCase(ledger *memory.Ledger, now time.Time) *UseCase {
	return NewUseCase(ledger, memory.NewTemplates(template()), &memory.TxManager{}, time.UTC, 31, logger.NewNop()).
		WithTimeProvider(fixedTime{now: now})
}

func dates(resp *Response) []string {
	out := make([]string, 0, len(resp.Dates))
	for _, d := range resp.Dates {
		out = append(out, d.Date.Format(domain.DateFormat))
	}
	return out
}

func TestExecute_SkipsFullAndInactiveDays(t *testing.T) {
	ledger := memory.NewLedger()
	// среда 12 марта заполнена
	ledger.Put(&domain.Booking{
		ID: "b1", Track: domain.TrackPostPurchase, ClientID: "c1",
		ScheduledDate: monday.AddDate(0, 0, 2), ScheduledTime: "10:00", Status: domain.StatusScheduled,
	})
	uc := newUseCase(ledger, monday.AddDate(0, 0, -14))

	resp, err := uc.Execute(context.Background(), &Request{
		Track: domain.TrackPostPurchase,
		From:  monday,
		To:    monday.AddDate(0, 0, 9),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-10", "2025-03-17", "2025-03-19"}, dates(resp))
}

func TestExecute_LeadTimeBoundary(t *testing.T) {
	slotAt := monday.Add(10 * time.Hour)
	req := &Request{Track: domain.TrackPostPurchase, From: monday, To: monday}

	resp, err := newUseCase(memory.NewLedger(), slotAt.Add(-7*24*time.Hour+time.Minute)).Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, resp.Dates)

	resp, err = newUseCase(memory.NewLedger(), slotAt.Add(-7*24*time.Hour)).Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-10"}, dates(resp))
}

func TestExecute_RangeValidation(t *testing.T) {
	uc := newUseCase(memory.NewLedger(), monday)

	_, err := uc.Execute(context.Background(), &Request{Track: domain.TrackPostPurchase, From: monday, To: monday.AddDate(0, 0, -1)})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = uc.Execute(context.Background(), &Request{Track: domain.TrackPostPurchase, From: monday, To: monday.AddDate(0, 0, 31)})
	assert.ErrorIs(t, err, ErrRangeTooLarge)

	_, err = uc.Execute(context.Background(), &Request{Track: "unknown", From: monday, To: monday})
	assert.ErrorIs(t, err, ErrInvalidTrack)
}

func TestExecute_StoreUnavailable(t *testing.T) {
	ledger := memory.NewLedger()
	ledger.Err = bookingRepo.ErrStoreUnavailable

	_, err := newUseCase(ledger, monday).Execute(context.Background(), &Request{Track: domain.TrackPostPurchase, From: monday, To: monday})

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
