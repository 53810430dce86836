// SPDX-License-Identifier: MIT

package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/qsolv/qsudoku/internal/log"
)

// auth enforces bearer token authentication when a token is configured.
// Without one the API is open, which Load logs at startup.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.cfg.APIToken
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		got := bearerToken(r)
		if got == "" {
			log.FromContext(r.Context()).Warn().Str(log.FieldEvent, "auth.missing").Msg("authorization header missing")
			writeUnauthorized(w)
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			log.FromContext(r.Context()).Warn().Str(log.FieldEvent, "auth.invalid").Msg("invalid api token")
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}
