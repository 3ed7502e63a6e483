package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	Cancel(ctx context.Context, id string, reason *string, by domain.Role) error
	Complete(ctx context.Context, id string) error
	AssignSpecialist(ctx context.Context, id string, specialistID string) (*domain.Booking, error)
}

// TemplateRepository нужен для политики отмены направления
type TemplateRepository interface {
	GetByTrack(ctx context.Context, track domain.Track) (*domain.ScheduleTemplate, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	ResolveUser(ctx context.Context, userID string) (*domain.User, error)
}

// MeetingServiceClient интерфейс клиента сервиса видеовстреч
type MeetingServiceClient interface {
	CloseRoom(ctx context.Context, roomID string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder бизнес-метрики бронирований
type MetricsRecorder interface {
	IncBookingCancelled(track, actor string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}
