package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrCannotCancel бронирование уже завершено или отменено
	ErrCannotCancel = errors.New("booking cannot be cancelled")

	// ErrCancellationWindowClosed до консультации осталось меньше допустимого срока отмены
	ErrCancellationWindowClosed = errors.New("cancellation window closed")

	// ErrInvalidStatus операция недопустима в текущем статусе бронирования
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrSpecialistNotFound пользователь не найден или не является специалистом
	ErrSpecialistNotFound = errors.New("specialist not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrStoreUnavailable хранилище временно недоступно
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrDependencyUnavailable внешний сервис временно недоступен
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
