package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/flipper-app/flipper/internal/domain"
	jwt_internal "github.com/flipper-app/flipper/internal/jwt"
	"github.com/flipper-app/flipper/internal/utils"
)

// Key to store the user claims in the request context
type key int

const userClaimsKey key = 0

// extractToken looks for the access token in the "accessToken" cookie first
// and falls back to the Authorization Bearer header.
func extractToken(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	header := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found && token != "" {
		return token, true
	}
	return "", false
}

func userFromToken(jwtService jwt_internal.JwtService, tokenStr string) (*domain.User, error) {
	token, err := jwtService.DecodeToken(tokenStr)
	if err != nil {
		return nil, err
	}

	claims := token.Claims.(jwt.MapClaims)

	// Create a User struct from the claims
	user := &domain.User{}
	if uid, ok := claims["uid"].(string); ok {
		user.Id = uid
	}
	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if admin, ok := claims["admin"].(bool); ok {
		user.Admin = admin
	}
	return user, nil
}

func Auth(jwtService jwt_internal.JwtService, adminOnly bool) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := extractToken(r)
			if !ok {
				http.Error(w, "Please sign-in", http.StatusUnauthorized)
				return
			}

			user, err := userFromToken(jwtService, tokenStr)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			if adminOnly && !user.Admin {
				http.Error(w, "Access denied. Only for admin", http.StatusForbidden)
				return
			}

			// Store the user in the request context
			ctx := context.WithValue(r.Context(), userClaimsKey, user)
			next(w, r.WithContext(ctx))
		}
	}
}

// Helper functions for admin and regular auth
func AdminOnly(jwtService jwt_internal.JwtService) func(http.HandlerFunc) http.HandlerFunc {
	return Auth(jwtService, true)
}

func NeedAuth(jwtService jwt_internal.JwtService) func(http.HandlerFunc) http.HandlerFunc {
	return Auth(jwtService, false)
}

// OptionalAuth attaches the user to the context when a valid token is
// present but lets anonymous requests through.
func OptionalAuth(jwtService jwt_internal.JwtService) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := extractToken(r)
			if !ok {
				next(w, r)
				return
			}

			user, err := userFromToken(jwtService, tokenStr)
			if err != nil {
				// A token was sent but is invalid; reject rather than
				// silently downgrading to anonymous.
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userClaimsKey, user)
			next(w, r.WithContext(ctx))
		}
	}
}

// Function to retrieve the user from the context
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(userClaimsKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
