package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-ordering/apperrors"
	"go-ordering/utils"
)

// Key type for context
type contextKey string

const (
	UserContextKey = contextKey("user")

	// TokenCookie carries the session token issued at login
	TokenCookie = "token"
	LoginPath   = "/auth/login"
)

// IdentifyMiddleware attaches the claims of a valid session token to the
// context and lets every request through. Pages use it to tell guests from
// logged-in users.
func IdentifyMiddleware(tokens *utils.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := parseRequestToken(tokens, r); ok {
				r = r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware verifies the session token and attaches user information to
// the context. Browsers without a valid token are sent to the login page;
// clients that sent an Authorization header get a plain 401.
func AuthMiddleware(tokens *utils.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := parseRequestToken(tokens, r)
			if !ok {
				if r.Header.Get("Authorization") != "" {
					http.Error(w, "Invalid token", http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ErrorResponder writes the response for a request that failed with err.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// RoleMiddleware ensures that the user has the given role and hands a
// forbidden error to respond otherwise. It must run after
// AuthMiddleware.
func RoleMiddleware(role string, respond ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok || claims.Role != role {
				respond(w, r, apperrors.Forbidden("%s accounts only", role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFrom(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// parseRequestToken prefers a Bearer header over the session cookie.
func parseRequestToken(tokens *utils.TokenManager, r *http.Request) (*utils.Claims, bool) {
	var tokenStr string
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return nil, false
		}
		tokenStr = parts[1]
	} else if c, err := r.Cookie(TokenCookie); err == nil {
		tokenStr = c.Value
	}
	if tokenStr == "" {
		return nil, false
	}

	claims, err := tokens.ParseJWT(tokenStr)
	if err != nil {
		return nil, false
	}
	return claims, true
}
