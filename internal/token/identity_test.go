package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://clerk.agency-hub.test"

func rsaKeyPEM(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func signIdentity(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func identityClaimsFor(sub, email string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"name":  "Fran Founder",
		"iss":   testIssuer,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Minute).Unix(),
	}
}

func TestIdentityVerifier_Verify(t *testing.T) {
	key, pemKey := rsaKeyPEM(t)
	v, err := NewIdentityVerifier(pemKey, testIssuer)
	require.NoError(t, err)

	identity, err := v.Verify(signIdentity(t, key, identityClaimsFor("user_123", "founder@example.com")))
	require.NoError(t, err)
	assert.Equal(t, "user_123", identity.Subject)
	assert.Equal(t, "founder@example.com", identity.Email)
	assert.Equal(t, "Fran Founder", identity.Name)
}

func TestIdentityVerifier_Rejects(t *testing.T) {
	key, pemKey := rsaKeyPEM(t)
	otherKey, _ := rsaKeyPEM(t)
	v, err := NewIdentityVerifier(pemKey, testIssuer)
	require.NoError(t, err)

	expired := identityClaimsFor("user_123", "founder@example.com")
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noExpiry := identityClaimsFor("user_123", "founder@example.com")
	delete(noExpiry, "exp")

	wrongIssuer := identityClaimsFor("user_123", "founder@example.com")
	wrongIssuer["iss"] = "https://evil.test"

	unverified := identityClaimsFor("user_123", "founder@example.com")
	unverified["email_verified"] = false

	hmacSigned, err := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaimsFor("user_123", "founder@example.com")).
		SignedString([]byte("guessable"))
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "", ErrInvalidIdentity},
		{"garbage", "not-a-jwt", ErrInvalidIdentity},
		{"foreign key", signIdentity(t, otherKey, identityClaimsFor("user_123", "founder@example.com")), ErrInvalidIdentity},
		{"hmac", hmacSigned, ErrInvalidIdentity},
		{"expired", signIdentity(t, key, expired), ErrInvalidIdentity},
		{"no expiry", signIdentity(t, key, noExpiry), ErrInvalidIdentity},
		{"wrong issuer", signIdentity(t, key, wrongIssuer), ErrInvalidIdentity},
		{"no email", signIdentity(t, key, identityClaimsFor("user_123", "")), ErrInvalidIdentity},
		{"no subject", signIdentity(t, key, identityClaimsFor("", "founder@example.com")), ErrInvalidIdentity},
		{"email not verified", signIdentity(t, key, unverified), ErrUnverifiedIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.raw)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewIdentityVerifier_BadKey(t *testing.T) {
	_, err := NewIdentityVerifier("not a pem", "")
	assert.Error(t, err)
}
