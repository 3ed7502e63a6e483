package export_bookings

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers/get_track_bookings"
	"github.com/m04kA/SMC-ConsultationService/internal/api/middleware"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings"
	"github.com/m04kA/SMC-ConsultationService/internal/service/reports"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidParams = "некорректные параметры запроса"
	msgForbidden     = "доступ запрещен"
)

type Handler struct {
	service ReportService
	logger  Logger
	now     func() time.Time
}

func NewHandler(service ReportService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

// Handle GET /api/v1/admin/bookings/export
// Query params те же, что у /admin/bookings; ответ - XLSX-файл
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	serviceReq, err := get_track_bookings.ToServiceRequest(r, userID)
	if err != nil {
		h.logger.Warn("GET /admin/bookings/export - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	// книга собирается целиком до отправки, чтобы ошибка не пришла посреди файла
	var buf bytes.Buffer
	if err := h.service.ExportBookings(r.Context(), serviceReq, &buf); err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /admin/bookings/export - Access denied: user_id=%s", userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrStoreUnavailable),
			errors.Is(err, bookings.ErrDependencyUnavailable):
			h.logger.Error("GET /admin/bookings/export - Unavailable: %v", err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("GET /admin/bookings/export - Failed to export: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	filename := fmt.Sprintf("bookings-%s.xlsx", h.now().Format("20060102-150405"))
	w.Header().Set("Content-Type", reports.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("GET /admin/bookings/export - Write response: %v", err)
		return
	}

	h.logger.Info("GET /admin/bookings/export - Exported %s for user_id=%s", filename, userID)
}
