package reschedule_booking

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers/create_booking"
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings/models"
	rescheduleBooking "github.com/m04kA/SMC-ConsultationService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	Date        string  `json:"date"`      // "2025-10-15"
	StartTime   string  `json:"startTime"` // "10:00"
	Description *string `json:"description,omitempty"`
}

// RescheduleBookingResponse отменённое и новое бронирование
type RescheduleBookingResponse struct {
	Previous *models.BookingResponse                `json:"previous"`
	Current  *create_booking.CreatedBookingResponse `json:"current"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(actorID, bookingID string) (*rescheduleBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, strings.TrimSpace(r.Date))
	if err != nil {
		return nil, err
	}

	return &rescheduleBooking.Request{
		ActorID:     actorID,
		BookingID:   bookingID,
		Date:        date,
		StartTime:   types.TimeString(strings.TrimSpace(r.StartTime)),
		Description: r.Description,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleBooking.Response) *RescheduleBookingResponse {
	return &RescheduleBookingResponse{
		Previous: models.FromDomainBooking(resp.Previous),
		Current:  create_booking.FromUseCaseResponse(resp.Current),
	}
}
