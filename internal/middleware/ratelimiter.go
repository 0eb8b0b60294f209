package middleware

import (
	"errors"
	"net/http"

	"github.com/flipper-app/flipper/internal/middleware/ratelimiter"
	"github.com/flipper-app/flipper/internal/utils"
)

func RateLimit(url *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !url.Allow(identity) {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		}
	}
}

func GetUserIDFromContext(r *http.Request) (string, error) {
	user := GetUserFromContext(r)
	if user == nil {
		return "", errors.New("Can't get user id")
	}
	return user.Id, nil
}

func GetIP(r *http.Request) (string, error) {
	ip, err := utils.GetIP(r)
	if err != nil {
		return "", err
	}
	return ip, nil
}
