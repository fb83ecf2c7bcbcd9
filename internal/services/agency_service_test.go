package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/repository"
	"github.com/yukikurage/agency-hub/internal/storage"
)

func TestAgencyService_SetupClearsStaleClientLink(t *testing.T) {
	f := newFixture(t)
	_, other := f.agency("Elsewhere", "else@example.com")
	stale := f.client("stale", other.ID)

	user := &models.User{Name: "Drifter", Email: "drifter@example.com", PasswordHash: "x", Role: models.RoleClient, ClientID: &stale.ID, IsActive: true}
	require.NoError(t, f.db.Create(user).Error)

	agencies := NewAgencyService(
		repository.NewAgencyRepository(f.db),
		repository.NewUserRepository(f.db),
		storage.NewLocalStorage(t.TempDir(), "http://localhost:8080"),
	)

	agency, err := agencies.SetupAgency(user.ID, SetupAgencyInput{Name: "Drifter Studio"})
	require.NoError(t, err)

	var reloaded models.User
	require.NoError(t, f.db.First(&reloaded, user.ID).Error)
	assert.Equal(t, models.RoleOwner, reloaded.Role)
	require.NotNil(t, reloaded.AgencyID)
	assert.Equal(t, agency.ID, *reloaded.AgencyID)
	assert.Nil(t, reloaded.ClientID)
	assert.Equal(t, user.ID, agency.OwnerID)

	_, err = agencies.SetupAgency(user.ID, SetupAgencyInput{Name: "Again"})
	assert.ErrorIs(t, err, ErrAgencyAlreadySetUp)
}
