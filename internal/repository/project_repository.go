package repository

import (
	"github.com/yukikurage/agency-hub/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Omit("Client").Create(project).Error
}

// FindByID finds a project visible through scope
func (r *GormProjectRepository) FindByID(id uint64, scope Scope) (*models.Project, error) {
	var project models.Project
	if err := r.db.Model(&models.Project{}).
		Scopes(scope).
		Preload("Client").
		Where("projects.id = ?", id).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List retrieves projects visible through scope, newest first
func (r *GormProjectRepository) List(scope Scope) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Model(&models.Project{}).
		Scopes(scope).
		Preload("Client").
		Order("projects.created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit("Client").Save(project).Error
}

// Delete hard deletes the project; its tasks are left orphaned
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Project{}, id).Error
}
