package api

import (
	"net/http"
	"strings"

	"github.com/alevsk/iamgraph/internal/auth"
)

// authMiddleware rejects requests without a valid bearer token whenever
// cfg.Server.AuthToken is configured; an unset token disables auth
// entirely, per §6.4. The health and metrics endpoints are always open so
// orchestrators can probe liveness without a token.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Server.AuthToken == "" || isOpenPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			writeError(w, http.StatusUnauthorized, "api: missing bearer token")
			return
		}

		if _, err := auth.ValidateBearerToken(s.cfg.Server.AuthToken, tokenString); err != nil {
			writeError(w, http.StatusUnauthorized, "api: "+err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isOpenPath(path string) bool {
	return path == "/api/v1/health" || path == "/metrics"
}
