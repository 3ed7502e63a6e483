package domain

import (
	"errors"
	"time"
)

var (
	ErrNotOwner                 = errors.New("domain: booking belongs to another user")
	ErrBookingNotActive         = errors.New("domain: booking is not scheduled")
	ErrCancellationWindowClosed = errors.New("domain: cancellation window closed")
)

// CheckCancel правила отмены бронирования.
// Клиент отменяет только своё и не позже чем за cancelLead до начала,
// специалист, администратор и система - без ограничений.
func CheckCancel(b *Booking, actor *User, cancelLead time.Duration, now time.Time, loc *time.Location) error {
	if !b.CanBeCancelled() {
		return ErrBookingNotActive
	}

	switch actor.Role {
	case RoleAdmin, RoleSystem, RoleSpecialist:
		return nil
	case RoleClient:
		if b.ClientID != actor.ID {
			return ErrNotOwner
		}
		if !now.Before(b.ScheduledAt(loc).Add(-cancelLead)) {
			return ErrCancellationWindowClosed
		}
		return nil
	default:
		return ErrNotOwner
	}
}

// CanView участники бронирования и персонал
func CanView(b *Booking, actor *User) bool {
	return actor.IsAdmin() || b.IsParticipant(actor.ID)
}
