package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tdenemark/hokieride/internal/models"
)

// JWTVerifier validates HS256 bearer tokens carrying `sub` and `email`
// claims. This is the production verifier; the fixed-identity variant lives
// in static.go and is for tests only.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(ctx context.Context, credential string) (models.Identity, error) {
	tok, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return models.Identity{}, err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return models.Identity{}, fmt.Errorf("unexpected claims type %T", tok.Claims)
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return models.Identity{}, fmt.Errorf("token missing sub or email claim")
	}
	return models.Identity{ID: sub, Email: email}, nil
}
