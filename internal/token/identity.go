package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidIdentity    = errors.New("invalid identity provider token")
	ErrUnverifiedIdentity = errors.New("identity provider has not verified the email")
)

// ExternalIdentity is what a verified identity provider token asserts about its holder.
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    string
}

type identityClaims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

// IdentityVerifier checks RS256 session tokens issued by the federated identity provider.
type IdentityVerifier struct {
	key    *rsa.PublicKey
	issuer string
	now    func() time.Time
}

// NewIdentityVerifier parses the provider's PEM public key. When issuer is set the
// token's iss claim must match it.
func NewIdentityVerifier(publicKeyPEM, issuer string) (*IdentityVerifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse identity provider key: %w", err)
	}
	return &IdentityVerifier{key: key, issuer: issuer, now: time.Now}, nil
}

// Verify checks signature, expiry and issuer, and requires a subject and an email.
func (v *IdentityVerifier) Verify(raw string) (*ExternalIdentity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	email := strings.TrimSpace(claims.Email)
	if claims.Subject == "" || email == "" {
		return nil, fmt.Errorf("%w: subject and email are required", ErrInvalidIdentity)
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return nil, ErrUnverifiedIdentity
	}

	return &ExternalIdentity{
		Subject: claims.Subject,
		Email:   email,
		Name:    claims.Name,
	}, nil
}
