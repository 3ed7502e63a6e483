package availability

import (
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

type slotKey struct {
	date    string
	minutes int
}

// Snapshot занятость слотов направления, снятая одним чтением журнала бронирований.
// Учитываются только запланированные (scheduled) бронирования.
type Snapshot struct {
	track  domain.Track
	counts map[slotKey]int
}

// NewSnapshot строит снимок по бронированиям; чужие направления и неактивные статусы пропускаются
func NewSnapshot(track domain.Track, bookings []*domain.Booking) *Snapshot {
	s := &Snapshot{
		track:  track,
		counts: make(map[slotKey]int, len(bookings)),
	}
	for _, b := range bookings {
		if b == nil || b.Track != track || !b.IsScheduled() {
			continue
		}
		s.counts[keyOf(b.ScheduledDate, b.ScheduledTime)]++
	}
	return s
}

// Booked количество занятых мест в слоте
func (s *Snapshot) Booked(date time.Time, start types.TimeString) int {
	if s == nil {
		return 0
	}
	return s.counts[keyOf(date, start)]
}

func keyOf(date time.Time, start types.TimeString) slotKey {
	return slotKey{date: date.Format(domain.DateFormat), minutes: start.Minutes()}
}
