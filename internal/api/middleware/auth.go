package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-ConsultationService/internal/api/handlers"
)

const (
	// UserIDHeader идентификатор пользователя, проставляется API-шлюзом
	UserIDHeader = "X-User-ID"
	// InternalKeyHeader ключ для внутренних вызовов других сервисов
	InternalKeyHeader = "X-Internal-Key"
)

type ctxKey int

const userIDKey ctxKey = iota

// Auth требует заголовок X-User-ID и кладёт его в контекст.
// Роль пользователя здесь не проверяется, её определяют сервисы через UserService.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			handlers.RespondUnauthorized(w, "отсутствует заголовок "+UserIDHeader)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID кладёт ID пользователя в контекст
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID достаёт ID пользователя, положенный Auth
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// InternalKey пропускает только запросы с верным X-Internal-Key.
// Пустой ключ в конфиге закрывает маршруты полностью.
func InternalKey(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(InternalKeyHeader)
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
				handlers.RespondForbidden(w, "доступ запрещен")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
