package get_track_bookings

import (
	"fmt"
	"net/http"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров track, from, to, status
func ToServiceRequest(r *http.Request, actorID string) (*models.GetTrackBookingsRequest, error) {
	from, err := handlers.QueryDate(r, "from")
	if err != nil {
		return nil, fmt.Errorf("invalid from: %w", err)
	}
	to, err := handlers.QueryDate(r, "to")
	if err != nil {
		return nil, fmt.Errorf("invalid to: %w", err)
	}

	return &models.GetTrackBookingsRequest{
		ActorID:   actorID,
		Track:     handlers.QueryString(r, "track"),
		StartDate: from,
		EndDate:   to,
		Status:    handlers.QueryString(r, "status"),
	}, nil
}
