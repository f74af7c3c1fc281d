package auth

import (
	"net/http"
	"strings"
)

// ExtractAPIKey extracts the API key from the Authorization header.
// Accepts "Bearer <key>" or a bare key.
func ExtractAPIKey(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingAPIKey
	}
	if strings.HasPrefix(header, "Bearer ") {
		key := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if key == "" {
			return "", ErrMissingAPIKey
		}
		return key, nil
	}
	return header, nil
}

// Middleware rejects requests the authorizer does not accept. The health
// endpoint is always open so probes work without credentials.
func Middleware(authorizer Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/health" {
				next.ServeHTTP(w, r)
				return
			}
			apiKey, _ := ExtractAPIKey(r)
			if _, err := authorizer.Authorize(r.Context(), apiKey, r.Method+" "+r.URL.Path); err != nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
