package domain

import (
	"time"

	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

// AvailableSlot слот на конкретную дату с остатком мест
type AvailableSlot struct {
	StartTime       types.TimeString
	DurationMinutes int
	Capacity        int
	Remaining       int
}

// IsFull returns true if the slot has no remaining places
func (s *AvailableSlot) IsFull() bool {
	return s.Remaining <= 0
}

// OccupancyRate доля занятых мест от 0 до 1
func (s *AvailableSlot) OccupancyRate() float64 {
	if s.Capacity <= 0 {
		return 0
	}
	return float64(s.Capacity-s.Remaining) / float64(s.Capacity)
}

// AvailableDate дата, на которую есть хотя бы один свободный слот
type AvailableDate struct {
	Date           time.Time
	SlotsAvailable int
}
