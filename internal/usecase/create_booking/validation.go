package create_booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

// validateRequest валидирует входные данные запроса до обращения к хранилищу
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}

	if strings.TrimSpace(req.ActorID) == "" {
		return fmt.Errorf("%w: actorID is required", ErrInvalidInput)
	}

	if !req.Track.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTrack, req.Track)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidDate)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidTime)
	}
	// дальше время только в виде "HH:MM": по нему строятся ключи блокировок
	start, err := types.NewTimeStringFromString(req.StartTime.String())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	req.StartTime = start

	if req.DurationMinutes != nil {
		d := *req.DurationMinutes
		if d < domain.MinConsultationDurationMinutes || d > domain.MaxConsultationDurationMinutes {
			return fmt.Errorf("%w: %d minutes, allowed %d..%d", ErrInvalidDuration, d,
				domain.MinConsultationDurationMinutes, domain.MaxConsultationDurationMinutes)
		}
	}

	if req.Description != nil && len([]rune(*req.Description)) > domain.MaxDescriptionLength {
		return fmt.Errorf("%w: description is longer than %d characters", ErrInvalidInput, domain.MaxDescriptionLength)
	}

	if req.CouponCode != nil {
		code := strings.TrimSpace(*req.CouponCode)
		if code == "" || len(code) > domain.MaxCouponCodeLength {
			return fmt.Errorf("%w: malformed coupon code", ErrCouponInvalid)
		}
	}

	if req.PurchaseAmount != nil && *req.PurchaseAmount < 0 {
		return fmt.Errorf("%w: purchaseAmount must not be negative", ErrInvalidInput)
	}

	return nil
}

// validateCoupon бизнес-правила промокода на момент записи
func validateCoupon(c *domain.Coupon, req *Request, now time.Time) error {
	switch {
	case !c.IsActive:
		return fmt.Errorf("%w: coupon %s is inactive", ErrCouponInvalid, c.Code)
	case c.IsExpired(now):
		return fmt.Errorf("%w: coupon %s is expired", ErrCouponInvalid, c.Code)
	case c.IsExhausted():
		return fmt.Errorf("%w: coupon %s usage limit exhausted", ErrCouponInvalid, c.Code)
	case !c.MeetsMinimum(req.PurchaseAmount):
		return fmt.Errorf("%w: purchase amount is below coupon %s minimum", ErrCouponInvalid, c.Code)
	}
	return nil
}
