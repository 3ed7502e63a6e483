package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

// Request перенос бронирования на другой слот того же направления
type Request struct {
	ActorID   string
	BookingID string
	Date      time.Time
	StartTime types.TimeString
	// Description пусто - остаётся прежнее
	Description *string
}

// Response отменённое старое и созданное новое бронирование
type Response struct {
	Previous *domain.Booking
	Current  *create_booking.Response
}
