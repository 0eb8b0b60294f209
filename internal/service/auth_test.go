package service

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	internal_errors "github.com/flipper-app/flipper/internal/errors"
	"github.com/flipper-app/flipper/internal/jwt"
)

func newTestAuth(t *testing.T, password string) (*Auth, jwt.JwtService) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	jwtService := jwt.New("test-key", time.Hour)
	return NewAuth(jwtService, "admin@test.dev", string(hash)), jwtService
}

func TestAdminLogin(t *testing.T) {
	auth, jwtService := newTestAuth(t, "hunter2")

	token, err := auth.AdminLogin("admin@test.dev", "hunter2")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	decoded, err := jwtService.DecodeToken(token)
	if err != nil {
		t.Fatalf("Minted token does not verify: %v", err)
	}
	claims := decoded.Claims.(jwtlib.MapClaims)
	if claims["uid"] != "admin" {
		t.Errorf("Unexpected uid claim: %v", claims["uid"])
	}
	if isAdmin, ok := claims["admin"].(bool); !ok || !isAdmin {
		t.Errorf("Expected admin claim true, got %v", claims["admin"])
	}
}

func TestAdminLoginRejected(t *testing.T) {
	auth, _ := newTestAuth(t, "hunter2")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong email", "someone@test.dev", "hunter2"},
		{"wrong password", "admin@test.dev", "wrong"},
		{"both wrong", "someone@test.dev", "wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.AdminLogin(tt.email, tt.password)
			var statusErr *internal_errors.ErrorWithStatusCode
			if !errors.As(err, &statusErr) || statusErr.StatusCode != 401 {
				t.Errorf("Expected 401, got: %v", err)
			}
		})
	}
}
