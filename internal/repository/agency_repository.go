package repository

import (
	"github.com/yukikurage/agency-hub/internal/models"
	"gorm.io/gorm"
)

// GormAgencyRepository is a GORM implementation of AgencyRepository
type GormAgencyRepository struct {
	db *gorm.DB
}

// NewAgencyRepository creates a new AgencyRepository
func NewAgencyRepository(db *gorm.DB) AgencyRepository {
	return &GormAgencyRepository{db: db}
}

func (r *GormAgencyRepository) FindByID(id uint64) (*models.Agency, error) {
	var agency models.Agency
	if err := r.db.First(&agency, id).Error; err != nil {
		return nil, err
	}
	return &agency, nil
}

// FindByOwnerID returns the oldest agency owned by the user
func (r *GormAgencyRepository) FindByOwnerID(ownerID uint64) (*models.Agency, error) {
	var agency models.Agency
	if err := r.db.Where("owner_id = ?", ownerID).Order("id ASC").First(&agency).Error; err != nil {
		return nil, err
	}
	return &agency, nil
}

func (r *GormAgencyRepository) Update(agency *models.Agency) error {
	return r.db.Save(agency).Error
}

// SetupForUser creates the agency and promotes the user to its owner
func (r *GormAgencyRepository) SetupForUser(user *models.User, agency *models.Agency) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		agency.OwnerID = user.ID
		if err := tx.Create(agency).Error; err != nil {
			return err
		}

		user.AgencyID = &agency.ID
		user.Role = models.RoleOwner
		user.ClientID = nil
		user.Client = nil
		return tx.Model(user).Updates(map[string]interface{}{
			"agency_id": agency.ID,
			"role":      models.RoleOwner,
			"client_id": nil,
		}).Error
	})
}
