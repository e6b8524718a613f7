package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

const msgInvalidSession = "некорректный заголовок " + HeaderSessionID

// Session читает необязательный X-Session-ID (UUID) анонимного клиента.
// Некорректное значение отклоняется, отсутствующее пропускается.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeaderSessionID)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidSession)
			return
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, id.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession то же, что Session, но без заголовка запрос отклоняется
func RequireSession(next http.Handler) http.Handler {
	return Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionID(r.Context()); !ok {
			handlers.RespondBadRequest(w, "отсутствует заголовок "+HeaderSessionID)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// GetSessionID возвращает нормализованный ID сессии
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}
