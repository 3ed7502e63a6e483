package reschedule_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrBookingNotFound переносимое бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrAccessDenied пользователь не может переносить это бронирование
	ErrAccessDenied = errors.New("reschedule_booking: access denied")

	// ErrCannotReschedule бронирование уже завершено или отменено
	ErrCannotReschedule = errors.New("reschedule_booking: booking is not scheduled")

	// ErrCancellationWindowClosed до консультации меньше допустимого срока отмены
	ErrCancellationWindowClosed = errors.New("reschedule_booking: cancellation window closed")

	// ErrSameSlot новый слот совпадает со старым
	ErrSameSlot = errors.New("reschedule_booking: booking is already in this slot")

	// ErrStoreUnavailable хранилище временно недоступно
	ErrStoreUnavailable = errors.New("reschedule_booking: store unavailable")

	// ErrDependencyUnavailable внешний сервис временно недоступен
	ErrDependencyUnavailable = errors.New("reschedule_booking: dependency unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
