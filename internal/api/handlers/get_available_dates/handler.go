package get_available_dates

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
	getAvailableDates "github.com/m04kA/SMC-ConsultationService/internal/usecase/get_available_dates"
)

const (
	msgInvalidTrack  = "неизвестное направление консультаций"
	msgMissingRange  = "параметры from и to обязательны"
	msgInvalidDate   = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidRange  = "начало диапазона позже конца"
	msgRangeTooLarge = "слишком большой диапазон дат"
)

type Handler struct {
	useCase        GetAvailableDatesUseCase
	logger         Logger
	bypassLeadTime bool
}

func NewHandler(useCase GetAvailableDatesUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// NewAdminHandler выдача без ограничения по сроку записи
func NewAdminHandler(useCase GetAvailableDatesUseCase, logger Logger) *Handler {
	h := NewHandler(useCase, logger)
	h.bypassLeadTime = true
	return h
}

// Handle GET /api/v1/tracks/{track}/available-dates?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	track, err := handlers.PathTrack(r)
	if err != nil {
		h.logger.Warn("GET /tracks/{track}/available-dates - Invalid track: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTrack)
		return
	}

	from, err := handlers.QueryDate(r, "from")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	to, err := handlers.QueryDate(r, "to")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	if from == nil || to == nil {
		handlers.RespondBadRequest(w, msgMissingRange)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableDates.Request{
		Track:          track,
		From:           *from,
		To:             *to,
		BypassLeadTime: h.bypassLeadTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableDates.ErrInvalidTrack):
			handlers.RespondBadRequest(w, msgInvalidTrack)

		case errors.Is(err, getAvailableDates.ErrInvalidRange):
			h.logger.Warn("GET /tracks/{track}/available-dates - Invalid range: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		case errors.Is(err, getAvailableDates.ErrRangeTooLarge):
			h.logger.Warn("GET /tracks/{track}/available-dates - Range too large: %v", err)
			handlers.RespondBadRequest(w, msgRangeTooLarge)

		case errors.Is(err, getAvailableDates.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, getAvailableDates.ErrStoreUnavailable):
			h.logger.Error("GET /tracks/{track}/available-dates - Store unavailable: track=%s, error=%v", track, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("GET /tracks/{track}/available-dates - Failed to get dates: track=%s, error=%v", track, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /tracks/{track}/available-dates - Dates retrieved: track=%s, dates_count=%d, bypass=%t",
		track, len(result.Dates), h.bypassLeadTime)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
