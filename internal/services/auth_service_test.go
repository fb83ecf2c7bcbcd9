package services

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
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/repository"
	"github.com/yukikurage/agency-hub/internal/token"
)

func TestAuthService_RegisterCreatesOwnerAndAgency(t *testing.T) {
	f := newFixture(t)

	result, err := f.auth.Register(RegisterInput{
		Name:       "  Olivia ",
		Email:      " Olivia@Example.com",
		Password:   "secret1",
		AgencyName: "Studio",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, "Olivia", result.User.Name)
	assert.Equal(t, "olivia@example.com", result.User.Email)
	assert.Equal(t, models.RoleOwner, result.User.Role)
	require.NotNil(t, result.User.AgencyID)

	var agency models.Agency
	require.NoError(t, f.db.First(&agency, *result.User.AgencyID).Error)
	assert.Equal(t, result.User.ID, agency.OwnerID)
	assert.Equal(t, models.DefaultCurrency, agency.Currency())
}

func TestAuthService_RegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Register(RegisterInput{Email: "a@example.com", Password: "secret1", AgencyName: "A"})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = f.auth.Register(RegisterInput{Name: "A", Email: "a@example.com", Password: "123", AgencyName: "A"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = f.auth.Register(RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAgencyNameRequired)

	var count int64
	f.db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)
}

func TestAuthService_LoginRepairsOwnerAgencyLink(t *testing.T) {
	f := newFixture(t)

	registered, err := f.auth.Register(RegisterInput{Name: "Owner", Email: "owner@example.com", Password: "secret1", AgencyName: "Studio"})
	require.NoError(t, err)
	agencyID := *registered.User.AgencyID

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", registered.User.ID).Update("agency_id", nil).Error)

	result, err := f.auth.Login(LoginInput{Email: "OWNER@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, result.User.AgencyID)
	assert.Equal(t, agencyID, *result.User.AgencyID)

	var stored models.User
	require.NoError(t, f.db.First(&stored, registered.User.ID).Error)
	require.NotNil(t, stored.AgencyID)
	assert.Equal(t, agencyID, *stored.AgencyID)
}

func TestAuthService_LoginRepairsClientLink(t *testing.T) {
	f := newFixture(t)

	owner, agency := f.agency("Studio", "owner@example.com")
	client := f.client("acme", agency.ID)

	added, err := f.team.AddMember(principalOf(owner), AddTeamMemberInput{
		Name:     "Acme Contact",
		Email:    client.Email,
		Password: "secret1",
		Role:     models.RoleClient,
		ClientID: &client.ID,
	})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", added.ID).Update("client_id", nil).Error)

	result, err := f.auth.Login(LoginInput{Email: client.Email, Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, result.User.ClientID)
	assert.Equal(t, client.ID, *result.User.ClientID)
}

func TestAuthService_LoginFailures(t *testing.T) {
	f := newFixture(t)

	registered, err := f.auth.Register(RegisterInput{Name: "Owner", Email: "owner@example.com", Password: "secret1", AgencyName: "Studio"})
	require.NoError(t, err)

	_, err = f.auth.Login(LoginInput{Email: "owner@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", registered.User.ID).Update("is_active", false).Error)
	_, err = f.auth.Login(LoginInput{Email: "owner@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

// identityProvider signs session tokens the way the federated provider does.
type identityProvider struct {
	t   *testing.T
	key *rsa.PrivateKey
	pem string
}

const identityIssuer = "https://clerk.agency-hub.test"

func newIdentityProvider(t *testing.T) *identityProvider {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return &identityProvider{t: t, key: key, pem: string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))}
}

func (p *identityProvider) sign(sub, email string) string {
	p.t.Helper()

	now := time.Now()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"name":  "Fed User",
		"iss":   identityIssuer,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Minute).Unix(),
	}).SignedString(p.key)
	require.NoError(p.t, err)
	return raw
}

// authWithProvider builds an AuthService on the fixture database that trusts idp.
func (f *fixture) authWithProvider(idp *identityProvider) *AuthService {
	f.t.Helper()

	verifier, err := token.NewIdentityVerifier(idp.pem, identityIssuer)
	require.NoError(f.t, err)
	return NewAuthService(
		repository.NewUserRepository(f.db),
		repository.NewAgencyRepository(f.db),
		repository.NewClientRepository(f.db),
		token.NewManager("test-secret", time.Hour),
		verifier,
	)
}

func TestAuthService_SyncExternalDisabledWithoutProvider(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.SyncExternal(ExternalSyncInput{IdentityToken: "anything"})
	assert.ErrorIs(t, err, ErrExternalAuthDisabled)
}

func TestAuthService_SyncExternalProvisionsOwner(t *testing.T) {
	f := newFixture(t)
	idp := newIdentityProvider(t)
	auth := f.authWithProvider(idp)

	first, err := auth.SyncExternal(ExternalSyncInput{IdentityToken: idp.sign("user_123", "Fed@Example.com")})
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, first.User.Role)
	assert.Equal(t, "fed@example.com", first.User.Email)
	assert.Nil(t, first.User.AgencyID)
	require.NotNil(t, first.User.ExternalID)
	assert.Equal(t, "user_123", *first.User.ExternalID)

	second, err := auth.SyncExternal(ExternalSyncInput{IdentityToken: idp.sign("user_123", "fed@example.com"), ExternalID: "user_123"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestAuthService_SyncExternalRejectsUnverifiedTokens(t *testing.T) {
	f := newFixture(t)
	idp := newIdentityProvider(t)
	auth := f.authWithProvider(idp)
	forger := newIdentityProvider(t)

	_, err := f.auth.Register(RegisterInput{Name: "Olivia", Email: "owner@example.com", Password: "secret1", AgencyName: "Studio"})
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"missing": "",
		"garbage": "attacker",
		"forged":  forger.sign("attacker", "owner@example.com"),
	} {
		_, err := auth.SyncExternal(ExternalSyncInput{IdentityToken: raw, ExternalID: "attacker"})
		assert.ErrorIs(t, err, ErrExternalAuthInvalid, name)
	}

	var owner models.User
	require.NoError(t, f.db.Where("email = ?", "owner@example.com").First(&owner).Error)
	assert.Nil(t, owner.ExternalID)
}

func TestAuthService_SyncExternalRefusesDifferentLinkedIdentity(t *testing.T) {
	f := newFixture(t)
	idp := newIdentityProvider(t)
	auth := f.authWithProvider(idp)

	registered, err := f.auth.Register(RegisterInput{Name: "Olivia", Email: "owner@example.com", Password: "secret1", AgencyName: "Studio"})
	require.NoError(t, err)

	linked, err := auth.SyncExternal(ExternalSyncInput{IdentityToken: idp.sign("user_owner", "owner@example.com")})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, linked.User.ID)
	require.NotNil(t, linked.User.ExternalID)
	assert.Equal(t, "user_owner", *linked.User.ExternalID)

	_, err = auth.SyncExternal(ExternalSyncInput{IdentityToken: idp.sign("user_other", "owner@example.com")})
	assert.ErrorIs(t, err, ErrExternalAuthMismatch)

	_, err = auth.SyncExternal(ExternalSyncInput{IdentityToken: idp.sign("user_owner", "owner@example.com"), ExternalID: "user_other"})
	assert.ErrorIs(t, err, ErrExternalAuthMismatch)

	var owner models.User
	require.NoError(t, f.db.First(&owner, registered.User.ID).Error)
	require.NotNil(t, owner.ExternalID)
	assert.Equal(t, "user_owner", *owner.ExternalID)
}

func TestAuthService_SyncExternalRejectsInactiveUser(t *testing.T) {
	f := newFixture(t)
	idp := newIdentityProvider(t)
	auth := f.authWithProvider(idp)

	registered, err := f.auth.Register(RegisterInput{Name: "Olivia", Email: "owner@example.com", Password: "secret1", AgencyName: "Studio"})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", registered.User.ID).Update("is_active", false).Error)

	_, err = auth.SyncExternal(ExternalSyncInput{IdentityToken: idp.sign("user_owner", "owner@example.com")})
	assert.ErrorIs(t, err, ErrAccountInactive)
}
