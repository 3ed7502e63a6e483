package meetingservice

import "errors"

var (
	// ErrRoomNotFound комната не существует или уже удалена
	ErrRoomNotFound = errors.New("meetingservice client: room not found")

	// ErrRoomConflict комната для бронирования уже создана
	ErrRoomConflict = errors.New("meetingservice client: room already exists")

	// ErrUnavailable сервис видеовстреч не отвечает или вернул 5xx
	ErrUnavailable = errors.New("meetingservice client: service unavailable")

	ErrInternal        = errors.New("meetingservice client: internal error")
	ErrInvalidResponse = errors.New("meetingservice client: invalid response")
)
