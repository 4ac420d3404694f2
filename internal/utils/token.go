package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateSessionToken issues the signed token a participant presents to the
// realtime channel for a live session.
func GenerateSessionToken(sessionID, userID string, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sessionId": sessionID,
		"userId":    userID,
		"exp":       time.Now().Add(24 * time.Hour).Unix(),
		"iat":       time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseSessionToken validates a session token and returns its sessionId and
// userId claims.
func ParseSessionToken(tokenString string, secret []byte) (sessionID, userID string, err error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	sessionID, _ = claims["sessionId"].(string)
	userID, _ = claims["userId"].(string)
	if sessionID == "" || userID == "" {
		return "", "", errors.New("token missing session claims")
	}
	return sessionID, userID, nil
}
