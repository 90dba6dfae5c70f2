package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/bizmate/bizmate/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the token payload. The subject carries the owner's email; userId
// and businessId scope every authenticated request to one account and its
// business.
type Claims struct {
	UserId     string `json:"userId"`
	BusinessId string `json:"businessId"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 signed tokens.
type TokenService struct {
	secret     []byte
	expiration time.Duration
}

func NewTokenService(cfg config.Jwt) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.Secret),
		expiration: time.Duration(cfg.ExpirationSeconds) * time.Second,
	}
}

func (s *TokenService) Issue(userId, email, businessId string, now time.Time) (string, error) {
	claims := Claims{
		UserId:     userId,
		BusinessId: businessId,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) Parse(tokenString string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
