package coupon

import (
	"errors"

	"github.com/m04kA/SMC-ConsultationService/pkg/pgerr"
)

var (
	// ErrCouponNotFound промокод с таким кодом не существует
	ErrCouponNotFound = errors.New("coupon.repository: coupon not found")

	// ErrUsageLimitReached лимит использований исчерпан к моменту списания
	ErrUsageLimitReached = errors.New("coupon.repository: usage limit reached")

	// ErrStoreUnavailable база недоступна
	ErrStoreUnavailable = errors.New("coupon.repository: store unavailable")

	ErrBuildQuery = errors.New("coupon.repository: failed to build query")
	ErrExecQuery  = errors.New("coupon.repository: failed to execute query")
)

func execErr(err error) error {
	if pgerr.IsUnavailable(err) {
		return ErrStoreUnavailable
	}
	return ErrExecQuery
}
