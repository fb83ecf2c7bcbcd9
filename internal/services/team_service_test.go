package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/agency-hub/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func TestTeamService_AddMember(t *testing.T) {
	f := newFixture(t)
	owner, agency := f.agency("Studio", "owner@example.com")
	client := f.client("acme", agency.ID)
	p := principalOf(owner)

	member, err := f.team.AddMember(p, AddTeamMemberInput{Name: "Mia", Email: "MIA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, member.Role)
	assert.Equal(t, "mia@example.com", member.Email)
	require.NotNil(t, member.AgencyID)
	assert.Equal(t, agency.ID, *member.AgencyID)
	assert.Nil(t, member.ClientID)

	_, err = f.team.AddMember(p, AddTeamMemberInput{Name: "Dup", Email: "mia@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = f.team.AddMember(p, AddTeamMemberInput{Name: "Boss", Email: "boss@example.com", Password: "secret1", Role: models.RoleOwner})
	assert.ErrorIs(t, err, ErrInvalidTeamRole)

	_, err = f.team.AddMember(p, AddTeamMemberInput{Name: "Contact", Email: "contact@example.com", Password: "secret1", Role: models.RoleClient})
	assert.ErrorIs(t, err, ErrClientLinkRequired)

	contact, err := f.team.AddMember(p, AddTeamMemberInput{Name: "Contact", Email: "contact@example.com", Password: "secret1", Role: models.RoleClient, ClientID: &client.ID})
	require.NoError(t, err)
	require.NotNil(t, contact.ClientID)
	assert.Equal(t, client.ID, *contact.ClientID)
}

func TestTeamService_ClientLinkMustBelongToAgency(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.agency("Studio", "owner@example.com")
	_, otherAgency := f.agency("Other", "other@example.com")
	foreign := f.client("globex", otherAgency.ID)

	_, err := f.team.AddMember(principalOf(owner), AddTeamMemberInput{
		Name:     "Contact",
		Email:    "contact@example.com",
		Password: "secret1",
		Role:     models.RoleClient,
		ClientID: &foreign.ID,
	})
	assert.ErrorIs(t, err, ErrClientLinkRequired)
}

func TestTeamService_OwnerCannotBeModified(t *testing.T) {
	f := newFixture(t)
	owner, agency := f.agency("Studio", "owner@example.com")
	member := f.user("member@example.com", models.RoleMember, agency.ID, nil)
	p := principalOf(owner)

	err := f.team.RemoveMember(p, owner.ID)
	assert.ErrorIs(t, err, ErrCannotRemoveYourself)

	_, err = f.team.SetActive(p, owner.ID, false)
	assert.ErrorIs(t, err, ErrCannotDeactivateSelf)

	role := models.RoleClient
	_, err = f.team.UpdateMember(principalOf(member), owner.ID, UpdateTeamMemberInput{Role: &role})
	assert.ErrorIs(t, err, ErrCannotModifyOwner)
}

func TestTeamService_UpdateAndDeactivate(t *testing.T) {
	f := newFixture(t)
	owner, agency := f.agency("Studio", "owner@example.com")
	client := f.client("acme", agency.ID)
	member := f.user("member@example.com", models.RoleMember, agency.ID, nil)
	p := principalOf(owner)

	role := models.RoleClient
	updated, err := f.team.UpdateMember(p, member.ID, UpdateTeamMemberInput{Role: &role, ClientID: &client.ID})
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, updated.Role)
	require.NotNil(t, updated.ClientID)

	role = models.RoleMember
	updated, err = f.team.UpdateMember(p, member.ID, UpdateTeamMemberInput{Role: &role})
	require.NoError(t, err)
	assert.Nil(t, updated.ClientID)

	inactive, err := f.team.SetActive(p, member.ID, false)
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)

	var stored models.User
	require.NoError(t, f.db.First(&stored, member.ID).Error)
	assert.False(t, stored.IsActive)
}

func TestTeamService_ResetPasswordAndRemove(t *testing.T) {
	f := newFixture(t)
	owner, agency := f.agency("Studio", "owner@example.com")
	member := f.user("member@example.com", models.RoleMember, agency.ID, nil)
	p := principalOf(owner)

	assert.ErrorIs(t, f.team.ResetPassword(p, member.ID, "123"), ErrNewPasswordTooShort)
	require.NoError(t, f.team.ResetPassword(p, member.ID, "brand-new"))

	var stored models.User
	require.NoError(t, f.db.First(&stored, member.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("brand-new")))

	require.NoError(t, f.team.RemoveMember(p, member.ID))
	_, err := f.team.GetMember(p, member.ID)
	assert.ErrorIs(t, err, ErrTeamMemberNotFound)
}

func TestTeamService_HidesOtherAgencies(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.agency("Studio", "owner@example.com")
	_, otherAgency := f.agency("Other", "other@example.com")
	stranger := f.user("stranger@example.com", models.RoleMember, otherAgency.ID, nil)

	_, err := f.team.GetMember(principalOf(owner), stranger.ID)
	assert.ErrorIs(t, err, ErrTeamMemberNotFound)

	team, err := f.team.ListTeam(principalOf(owner))
	require.NoError(t, err)
	for _, u := range team {
		assert.NotEqual(t, stranger.ID, u.ID)
	}
}
