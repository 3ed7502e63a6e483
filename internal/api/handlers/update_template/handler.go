package update_template

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
	"github.com/m04kA/SMC-ConsultationService/internal/api/middleware"
	"github.com/m04kA/SMC-ConsultationService/internal/service/templates"
	"github.com/m04kA/SMC-ConsultationService/internal/service/templates/models"
)

const (
	msgInvalidTrack       = "неизвестное направление консультаций"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
	msgSlotNotFound       = "слот шаблона не найден"
)

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

// Handle PUT /api/v1/admin/tracks/{track}/template
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	track, err := handlers.PathTrack(r)
	if err != nil {
		h.logger.Warn("PUT /admin/tracks/{track}/template - Invalid track: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTrack)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.ReplaceTemplateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /admin/tracks/{track}/template - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.ActorID = userID

	result, err := h.service.Replace(r.Context(), track, &req)
	if err != nil {
		switch {
		case errors.Is(err, templates.ErrInvalidTrack):
			handlers.RespondBadRequest(w, msgInvalidTrack)

		case errors.Is(err, templates.ErrInvalidInput):
			h.logger.Warn("PUT /admin/tracks/{track}/template - Invalid data: track=%s, error=%v", track, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, templates.ErrAccessDenied):
			h.logger.Warn("PUT /admin/tracks/{track}/template - Access denied: track=%s, user_id=%s", track, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, templates.ErrSlotNotFound):
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, templates.ErrStoreUnavailable),
			errors.Is(err, templates.ErrDependencyUnavailable):
			h.logger.Error("PUT /admin/tracks/{track}/template - Unavailable: track=%s, error=%v", track, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("PUT /admin/tracks/{track}/template - Failed to replace template: track=%s, error=%v", track, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /admin/tracks/{track}/template - Template replaced: track=%s, user_id=%s", track, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
