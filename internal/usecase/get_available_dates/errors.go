package get_available_dates

import "errors"

var (
	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = errors.New("usecase: invalid input")

	// ErrInvalidTrack неизвестное направление
	ErrInvalidTrack = errors.New("usecase: invalid track")

	// ErrInvalidRange начало диапазона позже конца
	ErrInvalidRange = errors.New("usecase: invalid date range")

	// ErrRangeTooLarge диапазон длиннее допустимого
	ErrRangeTooLarge = errors.New("usecase: date range too large")

	// ErrStoreUnavailable хранилище временно недоступно, запрос можно повторить
	ErrStoreUnavailable = errors.New("usecase: store unavailable")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("usecase: internal error")
)
