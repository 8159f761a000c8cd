package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vowsuite/vowsuite/internal/domain"
)

type contextKey string

const (
	claimsContextKey contextKey = "claims"
	claimsCarrierKey contextKey = "claimsCarrier"
)

// ClaimsFromContext returns the validated token claims, or nil when the
// request was not authenticated.
func ClaimsFromContext(ctx context.Context) *domain.TokenClaims {
	c, _ := ctx.Value(claimsContextKey).(*domain.TokenClaims)
	return c
}

// claimsCarrier lets middleware that runs outside BearerAuth (logging) see
// the claims: context values only flow inward, so BearerAuth writes them
// back through this mutable cell instead.
type claimsCarrier struct {
	claims *domain.TokenClaims
}

// BearerAuth validates the Authorization bearer token and stores its claims
// in the request context. Authorization against a specific organization is
// the handler's job.
func BearerAuth(tokens domain.TokenProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := tokens.Validate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			if carrier, ok := r.Context().Value(claimsCarrierKey).(*claimsCarrier); ok {
				carrier.claims = claims
			}
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
