package get_available_slots

import "errors"

var (
	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = errors.New("usecase: invalid input")

	// ErrInvalidTrack неизвестное направление
	ErrInvalidTrack = errors.New("usecase: invalid track")

	// ErrInvalidDate некорректная дата
	ErrInvalidDate = errors.New("usecase: invalid date")

	// ErrStoreUnavailable хранилище временно недоступно, запрос можно повторить
	ErrStoreUnavailable = errors.New("usecase: store unavailable")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("usecase: internal error")
)
