package get_template

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
	"github.com/m04kA/SMC-ConsultationService/internal/service/templates"
)

const msgInvalidTrack = "неизвестное направление консультаций"

type Handler struct {
	service TemplateService
	logger  Logger
}

func NewHandler(service TemplateService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/tracks/{track}/template
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	track, err := handlers.PathTrack(r)
	if err != nil {
		h.logger.Warn("GET /tracks/{track}/template - Invalid track: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTrack)
		return
	}

	result, err := h.service.Get(r.Context(), track)
	if err != nil {
		switch {
		case errors.Is(err, templates.ErrInvalidTrack):
			handlers.RespondBadRequest(w, msgInvalidTrack)

		case errors.Is(err, templates.ErrStoreUnavailable):
			h.logger.Error("GET /tracks/{track}/template - Store unavailable: track=%s, error=%v", track, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("GET /tracks/{track}/template - Failed to get template: track=%s, error=%v", track, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /tracks/{track}/template - Template retrieved: track=%s, slots=%d", track, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, result)
}
