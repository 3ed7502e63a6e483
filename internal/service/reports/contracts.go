package reports

import (
	"context"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings/models"
)

// BookingLister выборка бронирований с проверкой прав администратора
type BookingLister interface {
	ListForAdmin(ctx context.Context, req *models.GetTrackBookingsRequest) ([]*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
