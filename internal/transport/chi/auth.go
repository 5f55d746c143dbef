package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// publicPaths are served without a key so health checkers and scrapers keep working.
var publicPaths = map[string]struct{}{
	"/health":       {},
	"/health/ready": {},
	"/metrics":      {},
}

// keyring holds the accepted API keys.
type keyring [][]byte

func newKeyring(apiKeys []string) keyring {
	var ring keyring
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			ring = append(ring, []byte(k))
		}
	}
	return ring
}

// accepts compares against every key so timing does not reveal which one matched.
func (ring keyring) accepts(token string) bool {
	matched := 0
	for _, k := range ring {
		matched |= subtle.ConstantTimeCompare(k, []byte(token))
	}
	return matched == 1
}

// BearerAuthMiddleware rejects requests without a known "Authorization: Bearer <key>".
// No configured keys disables the check.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	ring := newKeyring(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(ring) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "missing authorization header")
				return
			}
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") {
				unauthorized(w, "authorization header must use Bearer scheme")
				return
			}
			if !ring.accepts(strings.TrimSpace(token)) {
				unauthorized(w, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="electives"`)
	writeError(w, http.StatusUnauthorized, message)
}
