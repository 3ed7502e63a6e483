package reschedule_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
	"github.com/m04kA/SMC-ConsultationService/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-ConsultationService/internal/usecase/create_booking"
	rescheduleBooking "github.com/m04kA/SMC-ConsultationService/internal/usecase/reschedule_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidInput       = "некорректные данные переноса"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgCannotReschedule   = "перенести можно только запланированную консультацию"
	msgWindowClosed       = "срок переноса бронирования истёк"
	msgSameSlot           = "бронирование уже стоит в этом слоте"
	msgSlotNotAvailable   = "выбранный временной слот недоступен"
	msgSlotBusy           = "слот сейчас бронируется другим пользователем, повторите попытку"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["bookingId"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID, bookingID)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleBooking.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleBooking.ErrAccessDenied),
			errors.Is(err, createBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/reschedule - Access denied: booking_id=%s, user_id=%s", bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rescheduleBooking.ErrCannotReschedule):
			handlers.RespondConflict(w, msgCannotReschedule)

		case errors.Is(err, rescheduleBooking.ErrCancellationWindowClosed):
			handlers.RespondConflict(w, msgWindowClosed)

		case errors.Is(err, rescheduleBooking.ErrSameSlot):
			handlers.RespondConflict(w, msgSameSlot)

		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings/{id}/reschedule - Slot not available: booking_id=%s, date=%s, time=%s",
				bookingID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrSlotBusy):
			w.Header().Set("Retry-After", "1")
			handlers.RespondConflict(w, msgSlotBusy)

		case errors.Is(err, rescheduleBooking.ErrInvalidInput),
			errors.Is(err, createBooking.ErrInvalidInput),
			errors.Is(err, createBooking.ErrInvalidDate),
			errors.Is(err, createBooking.ErrInvalidTime):
			h.logger.Warn("POST /bookings/{id}/reschedule - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, rescheduleBooking.ErrStoreUnavailable),
			errors.Is(err, rescheduleBooking.ErrDependencyUnavailable),
			errors.Is(err, createBooking.ErrStoreUnavailable),
			errors.Is(err, createBooking.ErrDependencyUnavailable),
			errors.Is(err, createBooking.ErrRoomProvisioning):
			h.logger.Error("POST /bookings/{id}/reschedule - Unavailable: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("POST /bookings/{id}/reschedule - Failed: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/reschedule - Booking moved: booking_id=%s, new_booking_id=%s",
		bookingID, result.Current.Booking.ID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
