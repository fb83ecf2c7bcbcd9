package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/policy"
	"github.com/yukikurage/agency-hub/internal/repository"
	"github.com/yukikurage/agency-hub/internal/token"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type emitted struct {
	Room    string
	Event   string
	Payload interface{}
}

// recordingEmitter captures emitted events instead of delivering them.
type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (e *recordingEmitter) Emit(_ context.Context, room, event string, payload interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{Room: room, Event: event, Payload: payload})
	return nil
}

func (e *recordingEmitter) Events() []emitted {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]emitted(nil), e.events...)
}

// fixture is a migrated in-memory database with the services built on it.
type fixture struct {
	t       *testing.T
	db      *gorm.DB
	emitter *recordingEmitter

	auth          *AuthService
	notifications *NotificationService
	tasks         *TaskService
	invoices      *InvoiceService
	team          *TeamService
	chat          *ChatService
	analytics     *AnalyticsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(models.All()...))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	agencyRepo := repository.NewAgencyRepository(db)
	clientRepo := repository.NewClientRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	emitter := &recordingEmitter{}
	notifications := NewNotificationService(repository.NewNotificationRepository(db), emitter)

	return &fixture{
		t:             t,
		db:            db,
		emitter:       emitter,
		auth:          NewAuthService(userRepo, agencyRepo, clientRepo, token.NewManager("test-secret", time.Hour), nil),
		notifications: notifications,
		tasks:         NewTaskService(repository.NewTaskRepository(db), projectRepo, userRepo, notifications, nil),
		invoices:      NewInvoiceService(repository.NewInvoiceRepository(db), projectRepo, agencyRepo, userRepo, notifications, node),
		team:          NewTeamService(userRepo, clientRepo),
		chat:          NewChatService(repository.NewMessageRepository(db), userRepo, emitter),
		analytics:     NewAnalyticsService(repository.NewAnalyticsRepository(db)),
	}
}

func (f *fixture) agency(name, ownerEmail string) (*models.User, *models.Agency) {
	f.t.Helper()

	owner := &models.User{Name: "Owner " + name, Email: ownerEmail, PasswordHash: "x", Role: models.RoleOwner, IsActive: true}
	require.NoError(f.t, f.db.Create(owner).Error)

	agency := models.NewAgency(name, owner.ID, models.AgencySettings{Currency: "EUR"})
	require.NoError(f.t, f.db.Create(agency).Error)

	owner.AgencyID = &agency.ID
	require.NoError(f.t, f.db.Save(owner).Error)
	return owner, agency
}

func (f *fixture) user(email string, role models.Role, agencyID uint64, clientID *uint64) *models.User {
	f.t.Helper()

	u := &models.User{Name: email, Email: email, PasswordHash: "x", Role: role, AgencyID: &agencyID, ClientID: clientID, IsActive: true}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

func (f *fixture) client(name string, agencyID uint64) *models.Client {
	f.t.Helper()

	c := &models.Client{Name: name, Email: name + "@example.com", AgencyID: agencyID, Status: models.ClientStatusActive}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

func (f *fixture) project(name string, clientID, agencyID uint64) *models.Project {
	f.t.Helper()

	p := &models.Project{Name: name, ClientID: clientID, AgencyID: agencyID, Status: models.ProjectStatusActive}
	require.NoError(f.t, f.db.Create(p).Error)
	return p
}

func (f *fixture) notificationsFor(userID uint64) []models.Notification {
	f.t.Helper()

	var out []models.Notification
	require.NoError(f.t, f.db.Where("recipient_id = ?", userID).Order("id").Find(&out).Error)
	return out
}

func principalOf(u *models.User) policy.Principal {
	return policy.Principal{UserID: u.ID, Role: u.Role, AgencyID: u.AgencyID, ClientID: u.ClientID}
}
