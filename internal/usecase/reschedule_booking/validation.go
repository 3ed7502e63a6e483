package reschedule_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if strings.TrimSpace(req.ActorID) == "" {
		return fmt.Errorf("%w: actorID is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.BookingID) == "" {
		return fmt.Errorf("%w: bookingID is required", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	start, err := types.NewTimeStringFromString(req.StartTime.String())
	if err != nil {
		return fmt.Errorf("%w: startTime: %v", ErrInvalidInput, err)
	}
	req.StartTime = start
	return nil
}
