package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/agency-hub/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside the registration transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateAgency is returned when creating an agency fails inside the registration transaction.
	ErrCreateAgency = errors.New("user repository: create agency failed")
	// ErrLinkAgency is returned when binding the owner to the new agency fails.
	ErrLinkAgency = errors.New("user repository: link agency failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// CreateWithAgency creates the owner, then the agency, then links them, atomically.
func (r *GormUserRepository) CreateWithAgency(user *models.User, agency *models.Agency) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		agency.OwnerID = user.ID
		if err := tx.Create(agency).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateAgency, err)
		}

		user.AgencyID = &agency.ID
		if err := tx.Model(user).Update("agency_id", agency.ID).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrLinkAgency, err)
		}

		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email, ignoring case
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindInAgency finds a user by ID within an agency
func (r *GormUserRepository) FindInAgency(id, agencyID uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Client").
		Where("id = ? AND agency_id = ?", id, agencyID).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByAgency lists agency users except the excluded one
func (r *GormUserRepository) ListByAgency(agencyID, excludeID uint64) ([]models.User, error) {
	var users []models.User
	err := r.db.Preload("Client").
		Where("agency_id = ? AND id <> ?", agencyID, excludeID).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

// ListByRoles lists agency users with one of the roles, except the excluded one
func (r *GormUserRepository) ListByRoles(agencyID, excludeID uint64, roles []models.Role) ([]models.User, error) {
	var users []models.User
	if len(roles) == 0 {
		return users, nil
	}
	err := r.db.
		Where("agency_id = ? AND id <> ? AND role IN ?", agencyID, excludeID, roles).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

// ListClientUsers lists the client-role users linked to a client
func (r *GormUserRepository) ListClientUsers(clientID uint64) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("client_id = ? AND role = ?", clientID, models.RoleClient).Find(&users).Error
	return users, err
}

// CountInAgency counts how many of the given user IDs belong to the agency
func (r *GormUserRepository) CountInAgency(userIDs []uint64, agencyID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("agency_id = ? AND id IN ?", agencyID, userIDs).
		Count(&count).Error
	return count, err
}

// Update saves all fields of a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Omit("Client").Save(user).Error
}

// Delete hard deletes a user and their task assignments
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
}
