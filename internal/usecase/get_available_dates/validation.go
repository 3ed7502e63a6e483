package get_available_dates

import (
	"fmt"
	"time"
)

func validateRequest(req *Request, maxRangeDays int) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if !req.Track.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTrack, req.Track)
	}
	if req.From.IsZero() || req.To.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrInvalidInput)
	}
	if req.From.After(req.To) {
		return fmt.Errorf("%w: from %s is after to %s", ErrInvalidRange,
			req.From.Format(time.DateOnly), req.To.Format(time.DateOnly))
	}

	days := int(req.To.Sub(req.From).Hours()/24) + 1
	if maxRangeDays > 0 && days > maxRangeDays {
		return fmt.Errorf("%w: %d days, max %d", ErrRangeTooLarge, days, maxRangeDays)
	}
	return nil
}
