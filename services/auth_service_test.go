package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/tournament-draws/utils"
	"github.com/golang-jwt/jwt/v4"
)

func TestIssueToken(t *testing.T) {
	hash, err := utils.HashKey("organizer-key")
	if err != nil {
		t.Fatalf("HashKey error = %v", err)
	}
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewAuthService(hash, "secret", time.Hour).(*authService)
	svc.now = func() time.Time { return fixed }

	tests := []struct {
		name    string
		service *authService
		key     string
		wantErr error
	}{
		{name: "valid key", service: svc, key: "organizer-key"},
		{name: "wrong key", service: svc, key: "guess", wantErr: ErrAuthInvalidCredentials},
		{name: "empty key", service: svc, key: "", wantErr: ErrAuthInvalidCredentials},
		{name: "no key configured", service: NewAuthService("", "secret", 0).(*authService), key: "organizer-key", wantErr: ErrAuthNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := tt.service.IssueToken(context.Background(), tt.key)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("IssueToken error = %v", err)
			}
			if !token.ExpiresAt.Equal(fixed.Add(time.Hour)) {
				t.Errorf("expiresAt = %v", token.ExpiresAt)
			}

			claims := jwt.MapClaims{}
			parser := jwt.Parser{SkipClaimsValidation: true}
			if _, err := parser.ParseWithClaims(token.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
				return []byte("secret"), nil
			}); err != nil {
				t.Fatalf("token does not verify: %v", err)
			}
			if claims["role"] != RoleOrganizer {
				t.Errorf("role claim = %v", claims["role"])
			}
			if exp, _ := claims["exp"].(float64); int64(exp) != fixed.Add(time.Hour).Unix() {
				t.Errorf("exp claim = %v", claims["exp"])
			}
		})
	}
}
