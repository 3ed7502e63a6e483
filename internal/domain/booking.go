package domain

import (
	"time"

	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusScheduled BookingStatus = "scheduled"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// ParseBookingStatus проверяет строковый статус
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return BookingStatus(s), true
	}
	return "", false
}

// Booking консультация клиента.
// Перенос оформляется как отмена + новое бронирование со ссылкой RescheduledFrom.
type Booking struct {
	ID              string
	Track           Track
	ClientID        string
	SpecialistID    *string
	ScheduledDate   time.Time
	ScheduledTime   types.TimeString
	DurationMinutes int // копия из шаблона на момент записи
	Status          BookingStatus
	Description     *string

	CouponID   *int64
	CouponCode *string

	RoomID          *string
	RescheduledFrom *string

	CancellationReason *string
	CancelledBy        *Role
	CancelledAt        *time.Time
	CompletedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsScheduled returns true if the booking holds a place in its slot
func (b *Booking) IsScheduled() bool {
	return b.Status == StatusScheduled
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

func (b *Booking) IsCompleted() bool {
	return b.Status == StatusCompleted
}

// CanBeCancelled отменить можно только запланированную консультацию
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusScheduled
}

// CanAssignSpecialist специалиста можно менять до завершения консультации
func (b *Booking) CanAssignSpecialist() bool {
	return b.Status == StatusScheduled
}

// ScheduledAt начало консультации в часовом поясе расписания
func (b *Booking) ScheduledAt(loc *time.Location) time.Time {
	return b.ScheduledTime.On(b.ScheduledDate, loc)
}

// RoomOpensAt момент открытия комнаты видеовстречи
func (b *Booking) RoomOpensAt(loc *time.Location) time.Time {
	return b.ScheduledAt(loc).Add(-RoomEarlyAccessMinutes * time.Minute)
}

// IsParticipant клиент, назначенный специалист
func (b *Booking) IsParticipant(userID string) bool {
	if b.ClientID == userID {
		return true
	}
	return b.SpecialistID != nil && *b.SpecialistID == userID
}

// BookingsFilter фильтр выборки бронирований
type BookingsFilter struct {
	Track        *Track
	ClientID     *string
	SpecialistID *string
	StartDate    *time.Time // включительно
	EndDate      *time.Time // включительно
	Status       *BookingStatus
}
