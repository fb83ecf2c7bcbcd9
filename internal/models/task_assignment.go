package models

import (
	"time"
)

// TaskAssignment links a task to one of its assignees.
type TaskAssignment struct {
	TaskID    uint64    `gorm:"primarykey;autoIncrement:false" json:"taskId"`
	UserID    uint64    `gorm:"primarykey;autoIncrement:false;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TaskComment is one entry of a task's ordered comment thread.
type TaskComment struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null;index" json:"taskId"`
	AuthorID  uint64    `gorm:"not null" json:"authorId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
