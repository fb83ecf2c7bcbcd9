package repository

import (
	"strings"

	"github.com/yukikurage/agency-hub/internal/models"
	"gorm.io/gorm"
)

// GormClientRepository is a GORM implementation of ClientRepository
type GormClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &GormClientRepository{db: db}
}

func (r *GormClientRepository) Create(client *models.Client) error {
	return r.db.Create(client).Error
}

func (r *GormClientRepository) FindByID(id, agencyID uint64) (*models.Client, error) {
	var client models.Client
	if err := r.db.Where("id = ? AND agency_id = ?", id, agencyID).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByEmail matches the email case-insensitively within one agency
func (r *GormClientRepository) FindByEmail(email string, agencyID uint64) (*models.Client, error) {
	var client models.Client
	if err := r.db.
		Where("LOWER(email) = ? AND agency_id = ?", strings.ToLower(strings.TrimSpace(email)), agencyID).
		First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *GormClientRepository) List(agencyID uint64) ([]models.Client, error) {
	var clients []models.Client
	err := r.db.Where("agency_id = ?", agencyID).Order("created_at DESC").Find(&clients).Error
	return clients, err
}

func (r *GormClientRepository) Update(client *models.Client) error {
	return r.db.Save(client).Error
}

// Delete removes the client; returns gorm.ErrRecordNotFound when nothing matched
func (r *GormClientRepository) Delete(id, agencyID uint64) error {
	result := r.db.Where("id = ? AND agency_id = ?", id, agencyID).Delete(&models.Client{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
