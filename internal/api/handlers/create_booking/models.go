package create_booking

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-ConsultationService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ClientID        string   `json:"clientId,omitempty"` // ручная запись администратором
	Track           string   `json:"track"`
	Date            string   `json:"date"`      // "2025-10-15"
	StartTime       string   `json:"startTime"` // "10:00"
	DurationMinutes *int     `json:"durationMinutes,omitempty"`
	Description     *string  `json:"description,omitempty"`
	CouponCode      *string  `json:"couponCode,omitempty"`
	PurchaseAmount  *float64 `json:"purchaseAmount,omitempty"`
}

// CreatedBookingResponse бронирование и данные для входа в видеовстречу
type CreatedBookingResponse struct {
	models.BookingResponse
	JoinURL     string     `json:"joinUrl,omitempty"`
	RoomOpensAt *time.Time `json:"roomOpensAt,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Формат времени проверяет use case.
func (r *CreateBookingRequest) ToUseCaseRequest(actorID string) (*createBooking.Request, error) {
	track, err := domain.ParseTrack(r.Track)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse(domain.DateFormat, strings.TrimSpace(r.Date))
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		ActorID:         actorID,
		ClientID:        strings.TrimSpace(r.ClientID),
		Track:           track,
		Date:            date,
		StartTime:       types.TimeString(strings.TrimSpace(r.StartTime)),
		DurationMinutes: r.DurationMinutes,
		Description:     r.Description,
		CouponCode:      r.CouponCode,
		PurchaseAmount:  r.PurchaseAmount,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreatedBookingResponse {
	out := &CreatedBookingResponse{
		BookingResponse: *models.FromDomainBooking(resp.Booking),
		JoinURL:         resp.JoinURL,
	}
	if !resp.RoomOpensAt.IsZero() {
		opensAt := resp.RoomOpensAt
		out.RoomOpensAt = &opensAt
	}
	return out
}
