// Package memory хранилища в памяти процесса с теми же контрактами и ошибками,
// что и репозитории Postgres. Используются в тестах сценариев.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

// Ledger журнал бронирований
type Ledger struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking
	order    []string

	// SkipCapacityCheck отключает проверку вместимости при вставке
	SkipCapacityCheck bool
	// InsertDelay пауза перед вставкой, расширяет окно гонки в тестах
	InsertDelay time.Duration
	// Err если задана, возвращается всеми методами
	Err error
}

func NewLedger() *Ledger {
	return &Ledger{bookings: make(map[string]*domain.Booking)}
}

func (l *Ledger) CreateIfUnderCapacity(_ context.Context, b *domain.Booking, capacity int) (*domain.Booking, error) {
	if l.SkipCapacityCheck {
		// проверка и вставка разнесены во времени
		if l.InsertDelay > 0 {
			time.Sleep(l.InsertDelay)
		}
		return l.insert(b)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}

	if l.countLocked(b.Track, b.ScheduledDate, b.ScheduledTime.Minutes()) >= capacity {
		return nil, bookingRepo.ErrSlotNotAvailable
	}
	return l.insertLocked(b), nil
}

func (l *Ledger) insert(b *domain.Booking) (*domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	return l.insertLocked(b), nil
}

func (l *Ledger) insertLocked(b *domain.Booking) *domain.Booking {
	now := time.Now()
	stored := *b
	stored.CreatedAt, stored.UpdatedAt = now, now
	l.bookings[stored.ID] = &stored
	l.order = append(l.order, stored.ID)

	out := stored
	return &out
}

func (l *Ledger) countLocked(track domain.Track, date time.Time, minutes int) int {
	n := 0
	key := date.Format(domain.DateFormat)
	for _, b := range l.bookings {
		if b.Track == track && b.IsScheduled() &&
			b.ScheduledDate.Format(domain.DateFormat) == key && b.ScheduledTime.Minutes() == minutes {
			n++
		}
	}
	return n
}

// Put кладёт бронирование как есть (подготовка данных в тестах)
func (l *Ledger) Put(b *domain.Booking) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.insertLocked(b)
}

func (l *Ledger) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}

	b, ok := l.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	out := *b
	return &out, nil
}

func (l *Ledger) List(_ context.Context, f domain.BookingsFilter) ([]*domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}

	out := make([]*domain.Booking, 0)
	for _, id := range l.order {
		b := l.bookings[id]
		if !matches(b, f) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return out[i].ScheduledTime.Minutes() < out[j].ScheduledTime.Minutes()
	})
	return out, nil
}

func (l *Ledger) ListScheduled(ctx context.Context, track domain.Track, from, to time.Time) ([]*domain.Booking, error) {
	status := domain.StatusScheduled
	return l.List(ctx, domain.BookingsFilter{Track: &track, StartDate: &from, EndDate: &to, Status: &status})
}

func (l *Ledger) Cancel(_ context.Context, id string, reason *string, by domain.Role) error {
	return l.update(id, func(b *domain.Booking) {
		now := time.Now()
		b.Status = domain.StatusCancelled
		b.CancellationReason = reason
		b.CancelledBy = &by
		b.CancelledAt = &now
	})
}

func (l *Ledger) Complete(_ context.Context, id string) error {
	return l.update(id, func(b *domain.Booking) {
		now := time.Now()
		b.Status = domain.StatusCompleted
		b.CompletedAt = &now
	})
}

func (l *Ledger) AssignSpecialist(_ context.Context, id string, specialistID string) (*domain.Booking, error) {
	err := l.update(id, func(b *domain.Booking) {
		s := specialistID
		b.SpecialistID = &s
	})
	if err != nil {
		return nil, err
	}
	return l.GetByID(context.Background(), id)
}

func (l *Ledger) SetRoom(_ context.Context, id string, roomID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}

	b, ok := l.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	r := roomID
	b.RoomID = &r
	return nil
}

// update применяет изменение к запланированному бронированию
func (l *Ledger) update(id string, fn func(b *domain.Booking)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}

	b, ok := l.bookings[id]
	if !ok || !b.IsScheduled() {
		return bookingRepo.ErrNotScheduled
	}
	fn(b)
	b.UpdatedAt = time.Now()
	return nil
}

// CountScheduled количество запланированных бронирований в слоте
func (l *Ledger) CountScheduled(track domain.Track, date time.Time, start types.TimeString) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.countLocked(track, date, start.Minutes())
}

func matches(b *domain.Booking, f domain.BookingsFilter) bool {
	if f.Track != nil && b.Track != *f.Track {
		return false
	}
	if f.ClientID != nil && b.ClientID != *f.ClientID {
		return false
	}
	if f.SpecialistID != nil && (b.SpecialistID == nil || *b.SpecialistID != *f.SpecialistID) {
		return false
	}
	day := b.ScheduledDate.Format(domain.DateFormat)
	if f.StartDate != nil && day < f.StartDate.Format(domain.DateFormat) {
		return false
	}
	if f.EndDate != nil && day > f.EndDate.Format(domain.DateFormat) {
		return false
	}
	if f.Status != nil && b.Status != *f.Status {
		return false
	}
	return true
}
