package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/andrecf/recipebox/config"
	"github.com/andrecf/recipebox/internal/api"
	"github.com/andrecf/recipebox/internal/types"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session_token"

type contextKey string

const usernameKey contextKey = "username"
const userIDKey contextKey = "userID"

// Authenticate resolves the session token (cookie first, Authorization
// bearer as a fallback) and stores the acting username in the request
// context. Requests without a valid token continue anonymously; RequireUser
// is what gates protected routes.
func Authenticate(logger *slog.Logger, jwtCfg config.JWTConfig) func(next http.Handler) http.Handler {
	secretKey := []byte(jwtCfg.SecretKey)
	if len(secretKey) == 0 {
		logger.Error("FATAL: JWT Secret Key is not configured!")
		panic("JWT Secret Key cannot be empty")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			tokenString := sessionToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims := &types.Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return secretKey, nil
			})
			if err != nil || !token.Valid {
				// Expired or tampered cookie; treat the request as
				// anonymous rather than failing it.
				l.WarnContext(ctx, "Session token rejected", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			if claims.Issuer != jwtCfg.Issuer {
				l.WarnContext(ctx, "Session token issuer mismatch", slog.String("actual", claims.Issuer))
				next.ServeHTTP(w, r)
				return
			}
			if jwtCfg.Audience != "" && !hasAudience(claims.Audience, jwtCfg.Audience) {
				l.WarnContext(ctx, "Session token audience mismatch")
				next.ServeHTTP(w, r)
				return
			}

			ctx = context.WithValue(ctx, usernameKey, claims.Username)
			ctx = context.WithValue(ctx, userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser gates routes that need a logged-in user, redirecting to the
// login page with the original URL in the next parameter.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUsernameFromContext(r.Context()); !ok {
			api.RedirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUsernameFromContext returns the acting user's canonical username.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok && username != ""
}

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// ContextWithUsername is used by handler tests to simulate a session.
func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

func hasAudience(claimsAudience jwt.ClaimStrings, expected string) bool {
	for _, aud := range claimsAudience {
		if aud == expected {
			return true
		}
	}
	return false
}
