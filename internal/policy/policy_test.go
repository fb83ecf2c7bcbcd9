package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/agency-hub/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func sqlOf(db *gorm.DB, model interface{}, scope func(*gorm.DB) *gorm.DB) (string, []interface{}) {
	stmt := db.Model(model).Scopes(scope).Find(model).Statement
	return stmt.SQL.String(), stmt.Vars
}

func uptr(v uint64) *uint64 { return &v }

func TestFor_UnknownRole(t *testing.T) {
	_, err := For(Principal{UserID: 1, Role: "admin"})
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestPrincipal_Accessors(t *testing.T) {
	p := Principal{UserID: 1, Role: models.RoleClient}
	assert.Zero(t, p.Agency())
	assert.Zero(t, p.Client())
	assert.True(t, p.IsClient())
	assert.False(t, p.IsOwner())

	p.AgencyID, p.ClientID = uptr(4), uptr(9)
	assert.Equal(t, uint64(4), p.Agency())
	assert.Equal(t, uint64(9), p.Client())
}

func TestOwnerScope(t *testing.T) {
	db := dryRun(t)
	scope, err := For(Principal{UserID: 1, Role: models.RoleOwner, AgencyID: uptr(4)})
	require.NoError(t, err)

	sql, vars := sqlOf(db, &[]models.Task{}, scope.Tasks)
	assert.Contains(t, sql, "SELECT projects.id FROM projects WHERE projects.agency_id = ?")
	assert.NotContains(t, sql, "task_assignments")
	assert.Equal(t, []interface{}{uint64(4)}, vars)

	sql, _ = sqlOf(db, &[]models.Invoice{}, scope.Invoices)
	assert.Contains(t, sql, "invoices.agency_id = ?")

	assert.ElementsMatch(t, []models.Role{models.RoleMember, models.RoleClient}, scope.ChatPeers())
}

func TestOwnerScope_WithoutAgencySeesNothing(t *testing.T) {
	db := dryRun(t)
	scope, err := For(Principal{UserID: 1, Role: models.RoleOwner})
	require.NoError(t, err)

	sql, _ := sqlOf(db, &[]models.Project{}, scope.Projects)
	assert.Contains(t, sql, "1 = 0")
}

func TestMemberScope(t *testing.T) {
	db := dryRun(t)
	scope, err := For(Principal{UserID: 7, Role: models.RoleMember, AgencyID: uptr(4)})
	require.NoError(t, err)

	sql, vars := sqlOf(db, &[]models.Task{}, scope.Tasks)
	assert.Contains(t, sql, "task_assignments.user_id = ?")
	assert.Equal(t, []interface{}{uint64(4), uint64(7)}, vars)

	sql, _ = sqlOf(db, &[]models.Invoice{}, scope.Invoices)
	assert.Contains(t, sql, "1 = 0")

	assert.ElementsMatch(t, []models.Role{models.RoleOwner, models.RoleMember}, scope.ChatPeers())
}

func TestClientScope(t *testing.T) {
	db := dryRun(t)
	scope, err := For(Principal{UserID: 7, Role: models.RoleClient, AgencyID: uptr(4), ClientID: uptr(9)})
	require.NoError(t, err)

	sql, vars := sqlOf(db, &[]models.Project{}, scope.Projects)
	assert.Contains(t, sql, "projects.client_id = ?")
	assert.Equal(t, []interface{}{uint64(4), uint64(9)}, vars)

	sql, vars = sqlOf(db, &[]models.Invoice{}, scope.Invoices)
	assert.Contains(t, sql, "invoices.client_id = ?")
	assert.Equal(t, []interface{}{uint64(4), uint64(9)}, vars)

	assert.Equal(t, []models.Role{models.RoleOwner}, scope.ChatPeers())
}

func TestClientScope_WithoutClientLinkSeesNothing(t *testing.T) {
	db := dryRun(t)
	scope, err := For(Principal{UserID: 7, Role: models.RoleClient, AgencyID: uptr(4)})
	require.NoError(t, err)

	sql, _ := sqlOf(db, &[]models.Task{}, scope.Tasks)
	assert.Contains(t, sql, "1 = 0")
}
