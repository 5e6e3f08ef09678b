package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/sereniteo/crm/internal/auth"
	"github.com/sereniteo/crm/internal/store"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "crm_session"

// RequireAuth gates every data route: a missing, unknown, or expired session
// gets a structured 401 and never reaches the handler. Expiry is enforced by
// the session store query itself.
func RequireAuth(sessionStore *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{
				Email:     sess.Email,
				SessionID: sess.ID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "Non authentifié"})
}
