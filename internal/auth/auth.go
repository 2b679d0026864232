// Package auth enforces bearer-token authentication for the gateway API.
//
// Tokens are checked against a fixed allow-set loaded from configuration at
// startup. A request with no credential or a non-bearer scheme is rejected
// with 401, a well-formed but unknown token with 403. A server running with
// an empty allow-set fails closed with 500 so that a deployment that forgot
// to configure API_BEARER_TOKENS never serves unauthenticated traffic.
package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"ocrgateway/internal/logger"
)

// Middleware validates the Authorization header of every wrapped request.
type Middleware struct {
	tokens map[string]struct{}
	log    zerolog.Logger
}

// NewMiddleware creates a Middleware accepting the given tokens.
func NewMiddleware(tokens []string) *Middleware {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return &Middleware{
		tokens: set,
		log:    logger.WithComponent("auth"),
	}
}

// Wrap returns a handler that authenticates the request before delegating to next.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		if len(m.tokens) == 0 {
			m.log.Error().Msg("No bearer tokens configured; rejecting request")
			writeError(w, http.StatusInternalServerError, "server auth not configured: set API_BEARER_TOKENS")
			return
		}

		if _, found := m.tokens[strings.TrimSpace(token)]; !found {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusForbidden, "invalid bearer token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
