package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// ErrInvalidToken covers every way a token can fail verification:
// bad signature, wrong algorithm, malformed string, expired.
var ErrInvalidToken = errors.New("invalid or expired token")

// SessionClaims is what a verified session token asserts about its
// bearer.
type SessionClaims struct {
	UserID uint
	Email  string
}

// TokenIssuer signs and verifies session tokens. The secret and
// lifetime come from startup configuration; the token itself is the
// only session artifact, there is no revocation list.
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
}

func NewTokenIssuer(secret []byte, lifetime time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, lifetime: lifetime}
}

func (t *TokenIssuer) IssueToken(userID uint, email string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"email":  email,
		"exp":    time.Now().Add(t.lifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// VerifyToken parses tokenString and returns its claims. Every failure
// mode comes back as ErrInvalidToken; callers get no further detail.
func (t *TokenIssuer) VerifyToken(tokenString string) (SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	userID, ok := claims["userId"].(float64)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	email, ok := claims["email"].(string)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	return SessionClaims{UserID: uint(userID), Email: email}, nil
}
