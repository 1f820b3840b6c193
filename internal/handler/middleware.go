package handler

import (
	"errors"
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/msomdec/taskchat/internal/domain"
	"github.com/msomdec/taskchat/internal/service"
)

// RequireAuth is middleware that protects routes requiring authentication.
// It checks the bearer token's signature and expiry and injects the subject
// id into the request context. Nothing here touches the store: a bad token
// is rejected before any query could run.
func RequireAuth(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		subject, err := auth.VerifyToken(token)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		ctx := service.ContextWithSubject(r.Context(), subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header. A missing
// header is ErrTokenMissing; a wrong scheme or an empty credential is
// ErrTokenInvalid.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", domain.ErrTokenMissing
	}

	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", domain.ErrTokenInvalid
	}
	return token, nil
}

// writeAuthError reports an authentication failure. All three outcomes are
// 401, but the code tells a well-behaved client whether to re-login
// (token_expired) or fix its request (token_missing, token_invalid).
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "token_expired", "Token has expired.")
	case errors.Is(err, domain.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, "token_invalid", "Token is invalid.")
	default:
		writeError(w, http.StatusUnauthorized, "token_missing", "Authentication required.")
	}
}

// RateLimit applies a per-client-IP token bucket to the wrapped handler.
func RateLimit(limiter *service.RateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests. Slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SecurityHeaders sets defensive response headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// CORS lets the configured origins call the API from a browser. Preflight
// requests are answered here and never reach auth.
func CORS(origins []string, next http.Handler) http.Handler {
	allowAll := slices.Contains(origins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowAll || slices.Contains(origins, origin)) {
			h := w.Header()
			if allowAll {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
