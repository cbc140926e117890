package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
)

type accessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
}

// userID prefers the explicit user_id claim and falls back to sub.
func (c *accessClaims) userID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// TokenVerifier implements ports.TokenVerifier for RS256 access tokens.
type TokenVerifier struct {
	publicKey *rsa.PublicKey
	issuer    string
	audience  string
}

func NewTokenVerifier(publicKey *rsa.PublicKey, issuer, audience string) *TokenVerifier {
	return &TokenVerifier{publicKey: publicKey, issuer: issuer, audience: audience}
}

func (v *TokenVerifier) ValidateAccessToken(tokenString string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.publicKey, nil
	}, opts...)
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	userID := claims.userID()
	if userID == "" {
		return "", errors.New("token carries no subject")
	}
	return userID, nil
}

// TokenIssuer signs RS256 access tokens accepted by TokenVerifier. The tracker never issues tokens
// in production; the issuer backs the dev token command and tests.
type TokenIssuer struct {
	privateKey *rsa.PrivateKey
	issuer     string
	audience   string
}

func NewTokenIssuer(privateKey *rsa.PrivateKey, issuer, audience string) *TokenIssuer {
	return &TokenIssuer{privateKey: privateKey, issuer: issuer, audience: audience}
}

// Verifier returns a TokenVerifier for the issuer's public key.
func (t *TokenIssuer) Verifier() *TokenVerifier {
	return NewTokenVerifier(&t.privateKey.PublicKey, t.issuer, t.audience)
}

func (t *TokenIssuer) IssueAccessToken(userID string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
		UserID: userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(t.privateKey)
}

var _ ports.TokenVerifier = (*TokenVerifier)(nil)
