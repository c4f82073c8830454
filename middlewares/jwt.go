package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/securelogin/apiv1/utils"
)

type contextKey string

const claimsKey contextKey = "sessionClaims"

// GetTokenFromAuthorizationHeader extracts the bearer token from an
// Authorization header value.
func GetTokenFromAuthorizationHeader(authHeader string) (string, bool) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// IsAuthorized rejects requests without a valid session token and
// stores the verified claims on the request context for the handler.
func IsAuthorized(tokens *utils.TokenIssuer, f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := GetTokenFromAuthorizationHeader(r.Header.Get("Authorization"))
		if !ok {
			writeUnauthorized(w, utils.MISSING_TOKEN_ERROR)
			return
		}
		claims, err := tokens.VerifyToken(tokenString)
		if err != nil {
			writeUnauthorized(w, utils.INVALID_TOKEN_ERROR)
			return
		}
		f(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

// ClaimsFromContext returns the claims stored by IsAuthorized.
func ClaimsFromContext(ctx context.Context) (utils.SessionClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(utils.SessionClaims)
	return claims, ok
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
