package utils

import (
	"errors"
	"strconv"
	"time"

	"consultation-service/internal/app/models"

	"github.com/golang-jwt/jwt/v4"
)

type ActorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseActorJWT verifies an HS256 token and resolves the actor it was issued to.
func ParseActorJWT(tokenString, secret string) (*models.Actor, error) {
	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	actorID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || actorID <= 0 {
		return nil, errors.New("invalid token subject")
	}
	if claims.Role == "" {
		return nil, errors.New("invalid token role")
	}

	return &models.Actor{ID: actorID, Role: claims.Role}, nil
}

func GenerateActorJWT(actor models.Actor, secret string, expiry time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ActorClaims{
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(actor.ID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	})
	return token.SignedString([]byte(secret))
}
