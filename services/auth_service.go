package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-draws/utils"
	"github.com/golang-jwt/jwt/v4"
)

// RoleOrganizer is the only role allowed to change draws.
const RoleOrganizer = "organizer"

type AuthService interface {
	IssueToken(ctx context.Context, apiKey string) (*Token, error)
}

type Token struct {
	AccessToken string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type authService struct {
	keyHash   string
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewAuthService(keyHash, jwtSecret string, ttl time.Duration) AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{
		keyHash:   keyHash,
		jwtSecret: []byte(jwtSecret),
		ttl:       ttl,
		now:       time.Now,
	}
}

// IssueToken exchanges the organizer API key for a signed HS256 token.
func (s *authService) IssueToken(ctx context.Context, apiKey string) (*Token, error) {
	if s.keyHash == "" {
		return nil, ErrAuthNotConfigured
	}
	if apiKey == "" || !utils.CheckKeyHash(apiKey, s.keyHash) {
		return nil, ErrAuthInvalidCredentials
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":  "organizer",
		"role": RoleOrganizer,
		"exp":  expires.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Token{AccessToken: signed, ExpiresAt: expires}, nil
}
