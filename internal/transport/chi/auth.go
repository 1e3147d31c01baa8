package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// publicPaths are served without a key so probes and scrapers need no credentials.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// keyring holds the configured keys. Tokens are compared in constant time.
type keyring [][]byte

func newKeyring(keys []string) keyring {
	out := make(keyring, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, []byte(k))
		}
	}
	return out
}

func (k keyring) allows(token string) bool {
	t := []byte(token)
	ok := 0
	for _, key := range k {
		ok |= subtle.ConstantTimeCompare(key, t)
	}
	return ok == 1
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// BearerAuthMiddleware rejects /v1 requests that do not carry one of keys.
// With no keys configured every request passes.
func BearerAuthMiddleware(keys []string) func(http.Handler) http.Handler {
	valid := newKeyring(keys)

	return func(next http.Handler) http.Handler {
		if len(valid) == 0 {
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
			token, ok := bearerToken(header)
			if !ok {
				unauthorized(w, "authorization header must use Bearer scheme")
				return
			}
			if !valid.allows(token) {
				unauthorized(w, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="indexwatch"`)
	writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, msg)
}
