package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	ActorID            string  `json:"-"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// AssignSpecialistRequest запрос на назначение специалиста
type AssignSpecialistRequest struct {
	ActorID      string `json:"-"`
	SpecialistID string `json:"specialistId"`
}

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	ActorID string  `json:"-"`
	UserID  string  `json:"userId"`
	Status  *string `json:"status,omitempty"`
}

// GetTrackBookingsRequest запрос администратора на выборку бронирований
type GetTrackBookingsRequest struct {
	ActorID   string     `json:"-"`
	Track     *string    `json:"track,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Status    *string    `json:"status,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetTrackBookingsRequest) ToDomainFilter() (domain.BookingsFilter, error) {
	filter := domain.BookingsFilter{
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}

	if r.Track != nil {
		track, err := domain.ParseTrack(*r.Track)
		if err != nil {
			return filter, err
		}
		filter.Track = &track
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              string  `json:"id"`
	Track           string  `json:"track"`
	ClientID        string  `json:"clientId"`
	SpecialistID    *string `json:"specialistId,omitempty"`
	ScheduledDate   string  `json:"scheduledDate"` // "2025-10-15"
	ScheduledTime   string  `json:"scheduledTime"` // "10:00"
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	Description     *string `json:"description,omitempty"`
	CouponCode      *string `json:"couponCode,omitempty"`
	RoomID          *string `json:"roomId,omitempty"`
	RescheduledFrom *string `json:"rescheduledFrom,omitempty"`

	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledBy        *string    `json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		Track:              b.Track.String(),
		ClientID:           b.ClientID,
		SpecialistID:       b.SpecialistID,
		ScheduledDate:      b.ScheduledDate.Format(domain.DateFormat),
		ScheduledTime:      b.ScheduledTime.String(),
		DurationMinutes:    b.DurationMinutes,
		Status:             string(b.Status),
		Description:        b.Description,
		CouponCode:         b.CouponCode,
		RoomID:             b.RoomID,
		RescheduledFrom:    b.RescheduledFrom,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CompletedAt:        b.CompletedAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.CancelledBy != nil {
		by := string(*b.CancelledBy)
		resp.CancelledBy = &by
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, b := range bookings {
		if b != nil {
			resp.Bookings = append(resp.Bookings, *FromDomainBooking(b))
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain статус
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s, ok := domain.ParseBookingStatus(status)
	if !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}
