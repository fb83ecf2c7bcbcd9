package repository

import (
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/utils"
	"gorm.io/gorm"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// ListByRecipient returns one page of the inbox, newest first, with the total count
func (r *GormNotificationRepository) ListByRecipient(recipientID uint64, params utils.PaginationParams) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Order("id DESC").
		Offset(params.Offset).Limit(params.Limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// MarkRead flags one notification as read; it must belong to the recipient
func (r *GormNotificationRepository) MarkRead(id, recipientID uint64) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.Where("id = ? AND recipient_id = ?", id, recipientID).First(&notification).Error; err != nil {
		return nil, err
	}

	notification.IsRead = true
	if err := r.db.Model(&notification).Update("is_read", true).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// MarkAllRead flags every notification of the recipient as read
func (r *GormNotificationRepository) MarkAllRead(recipientID uint64) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
