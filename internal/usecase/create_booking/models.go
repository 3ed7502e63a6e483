package create_booking

import (
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	ActorID  string // кто создаёт
	ClientID string // для кого; пусто - для себя

	Track     domain.Track
	Date      time.Time
	StartTime types.TimeString

	DurationMinutes *int // только администратор
	Description     *string
	CouponCode      *string
	PurchaseAmount  *float64 // для проверки минимальной суммы промокода

	// Inherited заполняется при переносе и не приходит из API
	Inherited *Inherited
}

// Inherited параметры, которые новое бронирование наследует от переносимого
type Inherited struct {
	RescheduledFrom string
	DurationMinutes int
	Coupon          *domain.CouponRef
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking     *domain.Booking
	JoinURL     string
	RoomOpensAt time.Time
}
