package service

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/flipper-app/flipper/internal/domain"
	"github.com/flipper-app/flipper/internal/errors"
	"github.com/flipper-app/flipper/internal/jwt"
)

// Auth mints admin tokens. Regular user identity is issued externally and
// only verified by the middleware; the admin account is the single local
// credential, checked against a bcrypt hash from private config.
type Auth struct {
	jwt          jwt.JwtService
	adminEmail   string
	adminPwdHash string
}

func NewAuth(jwtService jwt.JwtService, adminEmail, adminPwdHash string) *Auth {
	return &Auth{jwt: jwtService, adminEmail: adminEmail, adminPwdHash: adminPwdHash}
}

func (a *Auth) AdminLogin(email, password string) (string, error) {
	if email != a.adminEmail {
		return "", &errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: 401}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.adminPwdHash), []byte(password)); err != nil {
		return "", &errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: 401}
	}

	return a.jwt.NewToken(domain.User{
		Id:    "admin",
		Name:  "Admin",
		Email: email,
		Admin: true,
	})
}
