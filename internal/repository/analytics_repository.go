package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/agency-hub/internal/database"
	"github.com/yukikurage/agency-hub/internal/models"
	"gorm.io/gorm"
)

const tasksOfAgency = "tasks.project_id IN (SELECT projects.id FROM projects WHERE projects.agency_id = ?)"

// GormAnalyticsRepository is a GORM implementation of AnalyticsRepository
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

func (r *GormAnalyticsRepository) invoices(agencyID uint64, dr database.DateRange) *gorm.DB {
	return r.db.Model(&models.Invoice{}).
		Where("invoices.agency_id = ?", agencyID).
		Scopes(database.CreatedWithin("invoices.created_at", dr))
}

func (r *GormAnalyticsRepository) tasks(agencyID uint64, dr database.DateRange) *gorm.DB {
	return r.db.Model(&models.Task{}).
		Where(tasksOfAgency, agencyID).
		Scopes(database.CreatedWithin("tasks.created_at", dr))
}

// Count counts agency rows of a model carrying agency_id and created_at
func (r *GormAnalyticsRepository) Count(model interface{}, agencyID uint64, dr database.DateRange) (int64, error) {
	var count int64
	err := r.db.Model(model).
		Where("agency_id = ?", agencyID).
		Scopes(database.CreatedWithin("created_at", dr)).
		Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) CountTasks(agencyID uint64, dr database.DateRange) (int64, error) {
	var count int64
	err := r.tasks(agencyID, dr).Count(&count).Error
	return count, err
}

func (r *GormAnalyticsRepository) PaidRevenue(agencyID uint64, dr database.DateRange) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	err := r.invoices(agencyID, dr).
		Where("invoices.status = ?", models.InvoiceStatusPaid).
		Select("COALESCE(SUM(invoices.amount), 0) AS total").
		Scan(&row).Error
	return row.Total, err
}

func (r *GormAnalyticsRepository) AverageInvoice(agencyID uint64, dr database.DateRange) (decimal.Decimal, error) {
	var row struct{ Average decimal.Decimal }
	err := r.invoices(agencyID, dr).
		Select("COALESCE(AVG(invoices.amount), 0) AS average").
		Scan(&row).Error
	return row.Average.Round(2), err
}

func (r *GormAnalyticsRepository) groupByStatus(query *gorm.DB, column string) ([]StatusCount, error) {
	rows := []StatusCount{}
	err := query.
		Select(column + " AS status, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *GormAnalyticsRepository) ProjectsByStatus(agencyID uint64, dr database.DateRange) ([]StatusCount, error) {
	query := r.db.Model(&models.Project{}).
		Where("projects.agency_id = ?", agencyID).
		Scopes(database.CreatedWithin("projects.created_at", dr))
	return r.groupByStatus(query, "projects.status")
}

func (r *GormAnalyticsRepository) ClientsByStatus(agencyID uint64, dr database.DateRange) ([]StatusCount, error) {
	query := r.db.Model(&models.Client{}).
		Where("clients.agency_id = ?", agencyID).
		Scopes(database.CreatedWithin("clients.created_at", dr))
	return r.groupByStatus(query, "clients.status")
}

func (r *GormAnalyticsRepository) TasksByStatus(agencyID uint64, dr database.DateRange) ([]StatusCount, error) {
	return r.groupByStatus(r.tasks(agencyID, dr), "tasks.status")
}

func (r *GormAnalyticsRepository) TasksByPriority(agencyID uint64, dr database.DateRange) ([]StatusCount, error) {
	return r.groupByStatus(r.tasks(agencyID, dr), "tasks.priority")
}

func (r *GormAnalyticsRepository) RevenueByStatus(agencyID uint64, dr database.DateRange) ([]StatusTotal, error) {
	rows := []StatusTotal{}
	err := r.invoices(agencyID, dr).
		Select("invoices.status AS status, COALESCE(SUM(invoices.amount), 0) AS total, COUNT(*) AS count").
		Group("invoices.status").
		Scan(&rows).Error
	return rows, err
}

// RevenueByMonth sums paid invoices per YYYY-MM, oldest month first
func (r *GormAnalyticsRepository) RevenueByMonth(agencyID uint64, dr database.DateRange) ([]MonthTotal, error) {
	rows := []MonthTotal{}
	month := database.MonthExpr(r.db, "invoices.created_at")
	err := r.invoices(agencyID, dr).
		Where("invoices.status = ?", models.InvoiceStatusPaid).
		Select(month + " AS month, COALESCE(SUM(invoices.amount), 0) AS total, COUNT(*) AS count").
		Group("month").
		Order("month ASC").
		Scan(&rows).Error
	return rows, err
}

// ClientAcquisition counts new clients per YYYY-MM, oldest month first
func (r *GormAnalyticsRepository) ClientAcquisition(agencyID uint64, dr database.DateRange) ([]MonthTotal, error) {
	rows := []MonthTotal{}
	month := database.MonthExpr(r.db, "clients.created_at")
	err := r.db.Model(&models.Client{}).
		Where("clients.agency_id = ?", agencyID).
		Scopes(database.CreatedWithin("clients.created_at", dr)).
		Select(month + " AS month, COUNT(*) AS count").
		Group("month").
		Order("month ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *GormAnalyticsRepository) TopClientsByRevenue(agencyID uint64, dr database.DateRange, limit int) ([]ClientTotal, error) {
	rows := []ClientTotal{}
	err := r.invoices(agencyID, dr).
		Joins("JOIN clients ON clients.id = invoices.client_id").
		Where("invoices.status = ?", models.InvoiceStatusPaid).
		Select("invoices.client_id AS client_id, clients.name AS client_name, COALESCE(SUM(invoices.amount), 0) AS total, COUNT(*) AS count").
		Group("invoices.client_id, clients.name").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *GormAnalyticsRepository) TopClientsByProjects(agencyID uint64, dr database.DateRange, limit int) ([]ClientTotal, error) {
	rows := []ClientTotal{}
	err := r.db.Model(&models.Project{}).
		Joins("JOIN clients ON clients.id = projects.client_id").
		Where("projects.agency_id = ?", agencyID).
		Scopes(database.CreatedWithin("projects.created_at", dr)).
		Select("projects.client_id AS client_id, clients.name AS client_name, COUNT(*) AS count").
		Group("projects.client_id, clients.name").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *GormAnalyticsRepository) TopProjectsByTasks(agencyID uint64, dr database.DateRange, limit int) ([]ProjectCount, error) {
	rows := []ProjectCount{}
	err := r.tasks(agencyID, dr).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Select("tasks.project_id AS project_id, projects.name AS project_name, COUNT(*) AS count").
		Group("tasks.project_id, projects.name").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ProjectDeadlines counts unfinished projects past their deadline and due before horizon
func (r *GormAnalyticsRepository) ProjectDeadlines(agencyID uint64, now, horizon time.Time) (int64, int64, error) {
	base := func() *gorm.DB {
		return r.db.Model(&models.Project{}).
			Where("agency_id = ? AND status <> ?", agencyID, models.ProjectStatusCompleted)
	}

	var overdue, upcoming int64
	if err := base().Where("deadline < ?", now).Count(&overdue).Error; err != nil {
		return 0, 0, err
	}
	if err := base().Where("deadline >= ? AND deadline <= ?", now, horizon).Count(&upcoming).Error; err != nil {
		return 0, 0, err
	}
	return overdue, upcoming, nil
}

func (r *GormAnalyticsRepository) ProjectBudget(agencyID uint64, dr database.DateRange) (BudgetStats, error) {
	var stats BudgetStats
	err := r.db.Model(&models.Project{}).
		Where("projects.agency_id = ?", agencyID).
		Scopes(database.CreatedWithin("projects.created_at", dr)).
		Select("COALESCE(SUM(projects.budget), 0) AS total_budget, COALESCE(AVG(projects.budget), 0) AS avg_budget").
		Scan(&stats).Error
	return stats, err
}

func (r *GormAnalyticsRepository) OverdueTasks(agencyID uint64, now time.Time, dr database.DateRange) (int64, error) {
	var count int64
	err := r.tasks(agencyID, dr).
		Where("tasks.due_date < ? AND tasks.status <> ?", now, models.TaskStatusDone).
		Count(&count).Error
	return count, err
}

// TasksPerAssignee counts assignments per user, optionally restricted to statuses
func (r *GormAnalyticsRepository) TasksPerAssignee(agencyID uint64, dr database.DateRange, statuses []models.TaskStatus) ([]AssigneeCount, error) {
	rows := []AssigneeCount{}
	query := r.tasks(agencyID, dr).
		Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id").
		Joins("JOIN users ON users.id = task_assignments.user_id")
	if len(statuses) > 0 {
		query = query.Where("tasks.status IN ?", statuses)
	}
	err := query.
		Select("users.id AS user_id, users.name AS user_name, users.email AS email, COUNT(*) AS count").
		Group("users.id, users.name, users.email").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}
