package domain

import "time"

// Coupon промокод, применяемый при записи
type Coupon struct {
	ID                int64
	Code              string
	IsActive          bool
	ValidFrom         *time.Time
	ValidUntil        *time.Time
	UsageLimit        *int // nil = без ограничения
	UsageCount        int
	MinPurchaseAmount *float64
	// FreeMinutes длительность бесплатной консультации вместо длительности из шаблона
	FreeMinutes *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsExpired промокод ещё не начал действовать или уже истёк
func (c *Coupon) IsExpired(now time.Time) bool {
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return true
	}
	return c.ValidUntil != nil && now.After(*c.ValidUntil)
}

// IsExhausted лимит использований исчерпан
func (c *Coupon) IsExhausted() bool {
	return c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit
}

// MeetsMinimum сумма покупки не ниже минимальной. Без суммы проверка не проходит,
// если минимум задан.
func (c *Coupon) MeetsMinimum(amount *float64) bool {
	if c.MinPurchaseAmount == nil || *c.MinPurchaseAmount <= 0 {
		return true
	}
	return amount != nil && *amount >= *c.MinPurchaseAmount
}

// CouponRef ссылка на промокод, сохраняемая в бронировании
type CouponRef struct {
	ID   int64
	Code string
}
