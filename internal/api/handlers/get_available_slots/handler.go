package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-ConsultationService/internal/usecase/get_available_slots"
)

const (
	msgInvalidTrack = "неизвестное направление консультаций"
	msgMissingDate  = "дата обязательна"
	msgInvalidDate  = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
	// bypassLeadTime выдача для администратора, без ограничения по сроку записи
	bypassLeadTime bool
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// NewAdminHandler выдача без ограничения по сроку записи, маршрут закрывается RequireAdmin
func NewAdminHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	h := NewHandler(useCase, logger)
	h.bypassLeadTime = true
	return h
}

// Handle GET /api/v1/tracks/{track}/available-slots?date=YYYY-MM-DD
// и GET /api/v1/admin/tracks/{track}/available-slots?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	track, err := handlers.PathTrack(r)
	if err != nil {
		h.logger.Warn("GET /tracks/{track}/available-slots - Invalid track: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTrack)
		return
	}

	date, err := handlers.QueryDate(r, "date")
	if err != nil {
		h.logger.Warn("GET /tracks/{track}/available-slots - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	if date == nil {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		Track:          track,
		Date:           *date,
		BypassLeadTime: h.bypassLeadTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidTrack):
			handlers.RespondBadRequest(w, msgInvalidTrack)

		case errors.Is(err, getAvailableSlots.ErrInvalidDate),
			errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /tracks/{track}/available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, getAvailableSlots.ErrStoreUnavailable):
			h.logger.Error("GET /tracks/{track}/available-slots - Store unavailable: track=%s, error=%v", track, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("GET /tracks/{track}/available-slots - Failed to get slots: track=%s, error=%v", track, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /tracks/{track}/available-slots - Slots retrieved: track=%s, date=%s, slots_count=%d, bypass=%t",
		track, r.URL.Query().Get("date"), len(result.Slots), h.bypassLeadTime)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
