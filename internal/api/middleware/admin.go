package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/integrations/userservice"
)

// UserResolver источник ролей пользователей
type UserResolver interface {
	ResolveUser(ctx context.Context, userID string) (*domain.User, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RequireAdmin пропускает только администраторов. Ставится после Auth.
func RequireAdmin(users UserResolver, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				handlers.RespondUnauthorized(w, "отсутствует заголовок "+UserIDHeader)
				return
			}

			user, err := users.ResolveUser(r.Context(), userID)
			switch {
			case err == nil:
			case errors.Is(err, userservice.ErrUserNotFound):
				handlers.RespondForbidden(w, "доступ запрещен")
				return
			case errors.Is(err, userservice.ErrUnavailable):
				logger.Error("RequireAdmin: resolve user=%s: %v", userID, err)
				handlers.RespondServiceUnavailable(w)
				return
			default:
				logger.Error("RequireAdmin: resolve user=%s: %v", userID, err)
				handlers.RespondInternalError(w)
				return
			}

			if !user.IsAdmin() {
				logger.Warn("RequireAdmin: user=%s with role %s denied %s %s", userID, user.Role, r.Method, r.URL.Path)
				handlers.RespondForbidden(w, "доступ запрещен")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
