package get_available_dates

import (
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// Request запрос дат со свободными слотами, границы включительно
type Request struct {
	Track          domain.Track
	From           time.Time
	To             time.Time
	BypassLeadTime bool
}

// Response даты по возрастанию
type Response struct {
	Track domain.Track
	From  time.Time
	To    time.Time
	Dates []domain.AvailableDate
}
