package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	inHttp "github.com/dormire/storefront/internal/http"
	"github.com/dormire/storefront/internal/log"
)

// Session attaches the browsing-session id to the request context. The id
// comes from the session cookie, then the X-Session-Id header; a new one
// is minted and set as a cookie when neither is present. Cart and wishlist
// state is keyed by this id.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(inHttp.COOKIE_SESSION_ID); err == nil {
			sessionID = cookie.Value
		}
		if sessionID == "" {
			sessionID = r.Header.Get(inHttp.KEY_HEADER_SESSION_ID)
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     inHttp.COOKIE_SESSION_ID,
				Value:    sessionID,
				Path:     "/",
				Expires:  time.Now().Add(30 * 24 * time.Hour),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		logger := zerolog.Ctx(r.Context()).
			With().
			Str(log.KeySessionID, sessionID).
			Logger()

		c := log.AttachSessionIDToContext(r.Context(), sessionID)
		c = logger.WithContext(c)
		next.ServeHTTP(w, r.WithContext(c))
	})
}
