package userservice

import "errors"

var (
	// ErrUserNotFound пользователь с таким ID не существует
	ErrUserNotFound = errors.New("userservice client: user not found")

	// ErrUnavailable сервис пользователей не отвечает или вернул 5xx
	ErrUnavailable = errors.New("userservice client: service unavailable")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("userservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("userservice client: invalid response")
)
