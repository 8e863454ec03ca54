package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/ecomarket/support-agent/internal/models"
)

var publicPaths = []string{"/health", "/"}

// Auth requires a valid API key in the configured header. Health and the
// chat page stay public.
func Auth(apiKeys []string, header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range publicPaths {
				if r.URL.Path == p {
					next.ServeHTTP(w, r)
					return
				}
			}
			if strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(header)
			if key == "" {
				models.WriteError(w, http.StatusUnauthorized, "missing API key")
				return
			}
			for _, valid := range apiKeys {
				if subtle.ConstantTimeCompare([]byte(key), []byte(valid)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}
			models.WriteError(w, http.StatusForbidden, "invalid API key")
		})
	}
}
