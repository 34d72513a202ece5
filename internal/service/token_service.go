package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMalformed indicates the presented string is not a parseable token.
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrTokenExpired indicates a well-formed token past its expiration time.
	ErrTokenExpired = errors.New("token is expired")
	// ErrTokenInvalid covers signature mismatches and any other verification failure.
	ErrTokenInvalid = errors.New("token is invalid")
)

// TokenService issues and verifies signed bearer tokens carrying a user identity.
type TokenService interface {
	Issue(userID int64) (string, error)
	Verify(tokenString string) (int64, error)
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService builds a token service around an immutable signing secret
// and a fixed TTL. Rotating the secret means constructing a new instance.
func NewTokenService(secret string, ttl time.Duration) (TokenService, error) {
	if secret == "" {
		return nil, errors.New("token signing secret is required")
	}
	if ttl == 0 {
		return nil, errors.New("token ttl is required")
	}
	return &tokenService{secret: []byte(secret), ttl: ttl}, nil
}

func (s *tokenService) Issue(userID int64) (string, error) {
	if userID <= 0 {
		return "", errors.New("user id is required")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) Verify(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return 0, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrTokenExpired
		default:
			return 0, ErrTokenInvalid
		}
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return 0, ErrTokenInvalid
	}
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrTokenInvalid
	}
	return userID, nil
}
