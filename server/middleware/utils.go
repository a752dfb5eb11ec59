package middlewares

import (
	"net/http"

	"github.com/vidextract/vidextract/server/config"
	"github.com/vidextract/vidextract/server/openid"
	"github.com/vidextract/vidextract/server/user"
)

func ApplyAuthenticationByConfig(next http.Handler) http.Handler {
	handler := next

	if config.Instance().Authentication.RequireAuth {
		handler = Authenticated(handler)
	}
	if config.Instance().OpenId.UseOpenId {
		handler = openid.Middleware(handler)
	}

	return handler
}

// Authenticated rejects requests without a valid token cookie.
func Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(user.TokenCookieName)
		if err != nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		if err := user.VerifyToken(cookie.Value); err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
