package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/integrations/meetingservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListScheduled(ctx context.Context, track domain.Track, from, to time.Time) ([]*domain.Booking, error)
	// CreateIfUnderCapacity вставка только если в слоте меньше capacity запланированных бронирований
	CreateIfUnderCapacity(ctx context.Context, booking *domain.Booking, capacity int) (*domain.Booking, error)
	SetRoom(ctx context.Context, id string, roomID string) error
	Cancel(ctx context.Context, id string, reason *string, by domain.Role) error
}

// TemplateRepository интерфейс репозитория шаблонов расписания
type TemplateRepository interface {
	GetByTrack(ctx context.Context, track domain.Track) (*domain.ScheduleTemplate, error)
}

// CouponRepository интерфейс репозитория промокодов
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	IncrementUsage(ctx context.Context, id int64) error
	ReleaseUsage(ctx context.Context, id int64) error
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	ResolveUser(ctx context.Context, userID string) (*domain.User, error)
}

// MeetingServiceClient интерфейс клиента сервиса видеовстреч
type MeetingServiceClient interface {
	CreateRoom(ctx context.Context, in meetingservice.CreateRoomRequest) (*meetingservice.Room, error)
	CloseRoom(ctx context.Context, roomID string) error
}

// SlotLocker сериализует запись в один слот между экземплярами сервиса
type SlotLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder бизнес-метрики бронирований
type MetricsRecorder interface {
	IncBookingCreated(track string, manual bool)
	IncSlotConflict(track string)
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

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
