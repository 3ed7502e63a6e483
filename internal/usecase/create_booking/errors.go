package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInvalidTrack неизвестное направление
	ErrInvalidTrack = errors.New("create_booking: invalid track")

	// ErrInvalidDate возвращается при некорректной дате бронирования
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrInvalidTime время не в формате HH:MM
	ErrInvalidTime = errors.New("create_booking: invalid booking time")

	// ErrInvalidDuration длительность вне допустимого диапазона
	ErrInvalidDuration = errors.New("create_booking: invalid duration")

	// ErrSlotNotAvailable слот заполнен, не существует или закрыт политикой записи
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrSlotBusy слот занят параллельной записью дольше времени ожидания
	ErrSlotBusy = errors.New("create_booking: slot is busy, retry later")

	// ErrCouponInvalid промокод не найден, неактивен, истёк, исчерпан или сумма покупки ниже минимальной
	ErrCouponInvalid = errors.New("create_booking: coupon is invalid")

	// ErrAccessDenied пользователь не может создать такое бронирование
	ErrAccessDenied = errors.New("create_booking: access denied")

	// ErrClientNotFound клиент для ручной записи не найден
	ErrClientNotFound = errors.New("create_booking: client not found")

	// ErrRoomProvisioning не удалось создать комнату видеовстречи, бронирование отменено
	ErrRoomProvisioning = errors.New("create_booking: meeting room provisioning failed")

	// ErrStoreUnavailable хранилище временно недоступно
	ErrStoreUnavailable = errors.New("create_booking: store unavailable")

	// ErrDependencyUnavailable внешний сервис временно недоступен
	ErrDependencyUnavailable = errors.New("create_booking: dependency unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
