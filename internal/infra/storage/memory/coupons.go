package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	couponRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/coupon"
)

// Coupons промокоды
type Coupons struct {
	mu    sync.Mutex
	items map[int64]*domain.Coupon
}

func NewCoupons(coupons ...*domain.Coupon) *Coupons {
	c := &Coupons{items: make(map[int64]*domain.Coupon)}
	for _, coupon := range coupons {
		cp := *coupon
		c.items[cp.ID] = &cp
	}
	return c
}

func (c *Coupons) GetByCode(_ context.Context, code string) (*domain.Coupon, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, coupon := range c.items {
		if strings.EqualFold(coupon.Code, strings.TrimSpace(code)) {
			cp := *coupon
			return &cp, nil
		}
	}
	return nil, couponRepo.ErrCouponNotFound
}

func (c *Coupons) IncrementUsage(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	coupon, ok := c.items[id]
	if !ok || coupon.IsExhausted() {
		return couponRepo.ErrUsageLimitReached
	}
	coupon.UsageCount++
	return nil
}

func (c *Coupons) ReleaseUsage(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if coupon, ok := c.items[id]; ok && coupon.UsageCount > 0 {
		coupon.UsageCount--
	}
	return nil
}

// UsageCount текущее число использований
func (c *Coupons) UsageCount(id int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if coupon, ok := c.items[id]; ok {
		return coupon.UsageCount
	}
	return 0
}
