package repository

import (
	"github.com/yukikurage/agency-hub/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task together with its assignments
func (r *GormTaskRepository) Create(task *models.Task, assigneeIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}
		return assign(tx, task.ID, assigneeIDs)
	})
}

// FindByID finds a task visible through scope with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, scope Scope, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.Model(&models.Task{}).Scopes(scope)

	query = withPreloads(query, preload)

	if err := query.Where("tasks.id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks visible through scope, newest first
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Scopes(filter.Scope)

	// Apply filters
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}

	query = withPreloads(query, filter.Preload)

	if err := query.Order("tasks.created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update saves a task; a non-nil assigneeIDs replaces the assignee set
func (r *GormTaskRepository) Update(task *models.Task, assigneeIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
			return err
		}
		if assigneeIDs == nil {
			return nil
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		return assign(tx, task.ID, assigneeIDs)
	})
}

// Delete removes a task with its assignments and comments
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// AddComment appends a comment to a task thread
func (r *GormTaskRepository) AddComment(comment *models.TaskComment) error {
	return r.db.Omit("Author").Create(comment).Error
}

func assign(tx *gorm.DB, taskID uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}

	assignments := make([]models.TaskAssignment, len(userIDs))
	for i, userID := range userIDs {
		assignments[i] = models.TaskAssignment{
			TaskID: taskID,
			UserID: userID,
		}
	}

	return tx.Omit("User").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&assignments).Error
}

// withPreloads applies the named preloads; the comment thread is kept in posting order.
func withPreloads(query *gorm.DB, names []string) *gorm.DB {
	for _, name := range names {
		if name == "Comments" {
			query = query.Preload(name, func(db *gorm.DB) *gorm.DB {
				return db.Order("task_comments.created_at ASC, task_comments.id ASC")
			})
			continue
		}
		query = query.Preload(name)
	}
	return query
}
