package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/perplexiplay/backend/internal/common/clock"
)

// TokenCodec issues and validates signed bearer tokens bound to a subject.
type TokenCodec interface {
	Issue(subject string) (string, error)
	Validate(token string) (string, error)
}

// JWTCodec signs HS256 tokens carrying sub, iat and exp. Validation pins the
// algorithm and requires exp, so unsigned or differently signed tokens fail.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
	parser *jwt.Parser
}

var _ TokenCodec = (*JWTCodec)(nil)

func NewJWTCodec(secret string, ttl time.Duration, clk clock.Clock) *JWTCodec {
	return &JWTCodec{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clk,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithTimeFunc(clk.Now),
		),
	}
}

func (c *JWTCodec) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is required")
	}

	now := c.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	incrementAccessTokensIssued()
	return token, nil
}

// Validate returns the token subject, or ErrInvalidToken for any malformed,
// tampered, expired or subject-less token.
func (c *JWTCodec) Validate(token string) (string, error) {
	subject, err := c.validate(token)
	recordTokenValidation(err == nil)
	return subject, err
}

func (c *JWTCodec) validate(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	var claims jwt.RegisteredClaims
	parsed, err := c.parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken.WithCause(err)
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", ErrInvalidToken.WithCause(errors.New("missing sub claim"))
	}

	return claims.Subject, nil
}
