package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/agency-hub/internal/database"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/utils"
	"gorm.io/gorm"
)

// Scope narrows a query; role strategies from the policy package satisfy it.
type Scope func(db *gorm.DB) *gorm.DB

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithAgency creates an owner and the agency they own within a single transaction.
	CreateWithAgency(user *models.User, agency *models.Agency) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email, ignoring case
	FindByEmail(email string) (*models.User, error)

	// FindInAgency finds a user by ID within an agency
	FindInAgency(id, agencyID uint64) (*models.User, error)

	// ListByAgency lists agency users except the excluded one
	ListByAgency(agencyID, excludeID uint64) ([]models.User, error)

	// ListByRoles lists agency users with one of the roles, except the excluded one
	ListByRoles(agencyID, excludeID uint64, roles []models.Role) ([]models.User, error)

	// ListClientUsers lists the client-role users linked to a client
	ListClientUsers(clientID uint64) ([]models.User, error)

	// CountInAgency counts how many of the given user IDs belong to the agency
	CountInAgency(userIDs []uint64, agencyID uint64) (int64, error)

	// Update saves all fields of a user
	Update(user *models.User) error

	// Delete hard deletes a user
	Delete(id uint64) error
}

// AgencyRepository defines the interface for agency data access
type AgencyRepository interface {
	FindByID(id uint64) (*models.Agency, error)
	FindByOwnerID(ownerID uint64) (*models.Agency, error)
	Update(agency *models.Agency) error

	// SetupForUser creates an agency and makes the user its owner atomically.
	SetupForUser(user *models.User, agency *models.Agency) error
}

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	Create(client *models.Client) error
	FindByID(id, agencyID uint64) (*models.Client, error)
	FindByEmail(email string, agencyID uint64) (*models.Client, error)
	List(agencyID uint64) ([]models.Client, error)
	Update(client *models.Client) error
	Delete(id, agencyID uint64) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id uint64, scope Scope) (*models.Project, error)
	List(scope Scope) ([]models.Project, error)
	Update(project *models.Project) error
	Delete(id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task together with its assignments
	Create(task *models.Task, assigneeIDs []uint64) error

	// FindByID finds a task visible through scope with optional preloading
	FindByID(id uint64, scope Scope, preload ...string) (*models.Task, error)

	// List retrieves tasks visible through scope
	List(filter TaskFilter) ([]models.Task, error)

	// Update saves a task; a non-nil assigneeIDs replaces the assignee set
	Update(task *models.Task, assigneeIDs []uint64) error

	// Delete removes a task with its assignments and comments
	Delete(id uint64) error

	// AddComment appends a comment to a task thread
	AddComment(comment *models.TaskComment) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Scope     Scope
	ProjectID *uint64
	Status    *models.TaskStatus
	Preload   []string
}

// InvoiceRepository defines the interface for invoice data access
type InvoiceRepository interface {
	Create(invoice *models.Invoice) error
	FindByID(id uint64, scope Scope) (*models.Invoice, error)
	List(scope Scope) ([]models.Invoice, error)

	// Update saves the invoice; a non-nil items slice replaces the line items
	Update(invoice *models.Invoice, items []models.InvoiceItem) error
	Delete(id uint64) error

	// ListPastDue returns pending invoices due before the cutoff
	ListPastDue(cutoff time.Time) ([]models.Invoice, error)

	// TransitionStatus changes status only from the given one and reports whether it did
	TransitionStatus(id uint64, from, to models.InvoiceStatus) (bool, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(notification *models.Notification) error
	ListByRecipient(recipientID uint64, params utils.PaginationParams) ([]models.Notification, int64, error)
	MarkRead(id, recipientID uint64) (*models.Notification, error)
	MarkAllRead(recipientID uint64) (int64, error)
}

// MessageRepository defines the interface for chat message data access
type MessageRepository interface {
	Create(message *models.Message) error
	Conversation(userA, userB uint64) ([]models.Message, error)
	MarkRead(senderID, receiverID uint64) (int64, error)
	UnreadCounts(receiverID uint64) (map[uint64]int64, error)
}

// AnalyticsRepository defines the read-only aggregation queries behind the reports.
// Every query is bound to one agency and the optional createdAt range.
type AnalyticsRepository interface {
	Count(model interface{}, agencyID uint64, r database.DateRange) (int64, error)
	CountTasks(agencyID uint64, r database.DateRange) (int64, error)
	PaidRevenue(agencyID uint64, r database.DateRange) (decimal.Decimal, error)
	AverageInvoice(agencyID uint64, r database.DateRange) (decimal.Decimal, error)

	ProjectsByStatus(agencyID uint64, r database.DateRange) ([]StatusCount, error)
	ClientsByStatus(agencyID uint64, r database.DateRange) ([]StatusCount, error)
	TasksByStatus(agencyID uint64, r database.DateRange) ([]StatusCount, error)
	TasksByPriority(agencyID uint64, r database.DateRange) ([]StatusCount, error)
	RevenueByStatus(agencyID uint64, r database.DateRange) ([]StatusTotal, error)

	RevenueByMonth(agencyID uint64, r database.DateRange) ([]MonthTotal, error)
	ClientAcquisition(agencyID uint64, r database.DateRange) ([]MonthTotal, error)

	TopClientsByRevenue(agencyID uint64, r database.DateRange, limit int) ([]ClientTotal, error)
	TopClientsByProjects(agencyID uint64, r database.DateRange, limit int) ([]ClientTotal, error)
	TopProjectsByTasks(agencyID uint64, r database.DateRange, limit int) ([]ProjectCount, error)

	ProjectDeadlines(agencyID uint64, now, horizon time.Time) (overdue int64, upcoming int64, err error)
	ProjectBudget(agencyID uint64, r database.DateRange) (BudgetStats, error)
	OverdueTasks(agencyID uint64, now time.Time, r database.DateRange) (int64, error)
	TasksPerAssignee(agencyID uint64, r database.DateRange, statuses []models.TaskStatus) ([]AssigneeCount, error)
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type StatusTotal struct {
	Status string          `json:"status"`
	Total  decimal.Decimal `json:"total"`
	Count  int64           `json:"count"`
}

type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type ClientTotal struct {
	ClientID   uint64          `json:"clientId"`
	ClientName string          `json:"clientName"`
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`
}

type ProjectCount struct {
	ProjectID   uint64 `json:"projectId"`
	ProjectName string `json:"projectName"`
	Count       int64  `json:"count"`
}

type BudgetStats struct {
	TotalBudget decimal.Decimal `json:"totalBudget"`
	AvgBudget   decimal.Decimal `json:"avgBudget"`
}

type AssigneeCount struct {
	UserID   uint64 `json:"userId"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Count    int64  `json:"count"`
}
