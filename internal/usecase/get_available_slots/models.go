package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// Request запрос на получение свободных слотов
type Request struct {
	Track domain.Track
	Date  time.Time
	// BypassLeadTime выдача для ручной записи администратором
	BypassLeadTime bool
}

// Response свободные слоты на дату по возрастанию времени
type Response struct {
	Track domain.Track
	Date  time.Time
	Slots []domain.AvailableSlot
}
