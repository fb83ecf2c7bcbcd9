package models

import "time"

type NotificationType string

const (
	NotificationTaskAssigned     NotificationType = "task_assigned"
	NotificationTaskUpdated      NotificationType = "task_updated"
	NotificationProjectUpdated   NotificationType = "project_updated"
	NotificationInvoiceGenerated NotificationType = "invoice_generated"
	NotificationInvoicePaid      NotificationType = "invoice_paid"
	NotificationGeneral          NotificationType = "general"
)

type EntityType string

const (
	EntityTask    EntityType = "Task"
	EntityProject EntityType = "Project"
	EntityInvoice EntityType = "Invoice"
)

type RelatedEntity struct {
	EntityType EntityType `gorm:"type:varchar(20)" json:"entityType,omitempty"`
	EntityID   *uint64    `json:"entityId,omitempty"`
}

type Notification struct {
	ID            uint64           `gorm:"primarykey" json:"id"`
	RecipientID   uint64           `gorm:"not null;index:idx_notifications_recipient_read,priority:1" json:"recipient"`
	SenderID      *uint64          `json:"sender"`
	Type          NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title         string           `gorm:"type:varchar(255);not null" json:"title"`
	Message       string           `gorm:"type:text;not null" json:"message"`
	RelatedEntity RelatedEntity    `gorm:"embedded;embeddedPrefix:related_" json:"relatedEntity"`
	IsRead        bool             `gorm:"not null;default:false;index:idx_notifications_recipient_read,priority:2" json:"isRead"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}
