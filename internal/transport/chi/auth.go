package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/samber/lo"
)

const bearerScheme = "bearer "

// BearerAuthMiddleware requires "Authorization: Bearer <key>" with one of apiKeys.
// Requests to the exempt paths pass unchecked. Without keys authentication is off.
func BearerAuthMiddleware(apiKeys []string, exempt ...string) func(http.Handler) http.Handler {
	keys := lo.Uniq(lo.Compact(apiKeys))
	skip := lo.SliceToMap(exempt, func(p string) (string, struct{}) { return p, struct{}{} })

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, msg := bearerToken(r.Header.Get("Authorization"))
			if msg == "" && !knownKey(keys, token) {
				msg = "invalid api key"
			}
			if msg != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="lpsearch"`)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token, or returns a client-facing reason it could not.
// The scheme is matched case-insensitively.
func bearerToken(header string) (token, reason string) {
	if header == "" {
		return "", "missing authorization header"
	}
	if len(header) < len(bearerScheme) || !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return "", "authorization header must use Bearer scheme"
	}
	token = strings.TrimSpace(header[len(bearerScheme):])
	if token == "" {
		return "", "empty bearer token"
	}
	return token, ""
}

func knownKey(keys []string, token string) bool {
	var match int
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare([]byte(k), []byte(token))
	}
	return match == 1
}
