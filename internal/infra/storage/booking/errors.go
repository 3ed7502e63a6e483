package booking

import (
	"errors"

	"github.com/m04kA/SMC-ConsultationService/pkg/pgerr"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotNotAvailable вставка не выполнена: в слоте не осталось мест
	ErrSlotNotAvailable = errors.New("booking.repository: slot not available")

	// ErrNotScheduled бронирование уже завершено или отменено
	ErrNotScheduled = errors.New("booking.repository: booking is not scheduled")

	// ErrStoreUnavailable база недоступна, запрос можно повторить позже
	ErrStoreUnavailable = errors.New("booking.repository: store unavailable")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)

// execErr выбирает sentinel для ошибки выполнения запроса
func execErr(err error) error {
	if pgerr.IsUnavailable(err) {
		return ErrStoreUnavailable
	}
	return ErrExecQuery
}
