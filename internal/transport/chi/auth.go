package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/samber/lo"
)

// publicPaths bypass authentication.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// BearerAuthMiddleware rejects requests without a valid "Bearer <key>"
// Authorization header. With no non-blank keys configured it is a no-op.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := lo.Filter(apiKeys, func(k string, _ int) bool { return strings.TrimSpace(k) != "" })

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "missing authorization header")
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}
			if !knownKey(keys, token) {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func knownKey(keys []string, token string) bool {
	return lo.ContainsBy(keys, func(k string) bool {
		return subtle.ConstantTimeCompare([]byte(k), []byte(token)) == 1
	})
}
