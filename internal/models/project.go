package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on-hold"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusCompleted, ProjectStatusOnHold:
		return true
	}
	return false
}

type Project struct {
	ID          uint64          `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	ClientID    uint64          `gorm:"not null;index" json:"clientId"`
	AgencyID    uint64          `gorm:"not null;index:idx_projects_agency_status,priority:1" json:"agencyId"`
	Status      ProjectStatus   `gorm:"type:varchar(20);not null;default:'planning';index:idx_projects_agency_status,priority:2" json:"status"`
	Budget      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"budget"`
	Deadline    *time.Time      `json:"deadline"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	// Relations
	Client Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}
