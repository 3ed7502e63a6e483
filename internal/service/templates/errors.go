package templates

import "errors"

var (
	// ErrInvalidTrack неизвестное направление
	ErrInvalidTrack = errors.New("invalid track")

	// ErrInvalidInput возвращается при некорректных данных шаблона
	ErrInvalidInput = errors.New("invalid input data")

	// ErrAccessDenied изменять шаблон может только администратор
	ErrAccessDenied = errors.New("access denied")

	// ErrSlotNotFound слот с указанным ID не принадлежит направлению
	ErrSlotNotFound = errors.New("slot definition not found")

	// ErrStoreUnavailable хранилище временно недоступно
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrDependencyUnavailable внешний сервис временно недоступен
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
