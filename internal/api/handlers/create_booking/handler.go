package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
	"github.com/m04kA/SMC-ConsultationService/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-ConsultationService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidRequest     = "некорректное направление или дата, дата ожидается в формате YYYY-MM-DD"
	msgInvalidInput       = "некорректные данные бронирования"
	msgInvalidTime        = "некорректный формат времени начала, ожидается HH:MM"
	msgInvalidDuration    = "некорректная длительность консультации"
	msgSlotNotAvailable   = "выбранный временной слот недоступен"
	msgSlotBusy           = "слот сейчас бронируется другим пользователем, повторите попытку"
	msgCouponInvalid      = "промокод недействителен"
	msgForbidden          = "доступ запрещен"
	msgClientNotFound     = "клиент не найден"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequest)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: user_id=%s, track=%s, date=%s, time=%s",
				userID, req.Track, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrSlotBusy):
			h.logger.Warn("POST /bookings - Slot busy: user_id=%s, track=%s", userID, req.Track)
			w.Header().Set("Retry-After", "1")
			handlers.RespondConflict(w, msgSlotBusy)

		case errors.Is(err, createBooking.ErrCouponInvalid):
			h.logger.Warn("POST /bookings - Coupon invalid: user_id=%s, error=%v", userID, err)
			handlers.RespondUnprocessable(w, msgCouponInvalid)

		case errors.Is(err, createBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings - Access denied: user_id=%s, error=%v", userID, err)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, createBooking.ErrClientNotFound):
			handlers.RespondNotFound(w, msgClientNotFound)

		case errors.Is(err, createBooking.ErrInvalidTime):
			handlers.RespondBadRequest(w, msgInvalidTime)

		case errors.Is(err, createBooking.ErrInvalidDuration):
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, createBooking.ErrInvalidInput),
			errors.Is(err, createBooking.ErrInvalidTrack),
			errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%s, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrStoreUnavailable),
			errors.Is(err, createBooking.ErrDependencyUnavailable),
			errors.Is(err, createBooking.ErrRoomProvisioning):
			h.logger.Error("POST /bookings - Unavailable: user_id=%s, error=%v", userID, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%s, track=%s, error=%v",
				userID, req.Track, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%s, client_id=%s, track=%s",
		result.Booking.ID, result.Booking.ClientID, result.Booking.Track)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
