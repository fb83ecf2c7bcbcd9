package models

import "time"

// Message is a direct chat message between two users of the same agency.
type Message struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	SenderID   uint64    `gorm:"not null;index:idx_messages_pair,priority:1" json:"sender"`
	ReceiverID uint64    `gorm:"not null;index:idx_messages_pair,priority:2" json:"receiver"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	AgencyID   *uint64   `gorm:"index" json:"agencyId"`
	IsRead     bool      `gorm:"not null;default:false" json:"isRead"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}
