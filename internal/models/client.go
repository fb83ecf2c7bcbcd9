package models

import "time"

type ClientStatus string

const (
	ClientStatusLead   ClientStatus = "Lead"
	ClientStatusActive ClientStatus = "Active"
	ClientStatusPast   ClientStatus = "Past"
)

func (s ClientStatus) Valid() bool {
	switch s {
	case ClientStatusLead, ClientStatusActive, ClientStatusPast:
		return true
	}
	return false
}

type Client struct {
	ID        uint64       `gorm:"primarykey" json:"id"`
	Name      string       `gorm:"type:varchar(255);not null" json:"name"`
	Email     string       `gorm:"type:varchar(255);not null;index" json:"email"`
	Company   string       `gorm:"type:varchar(255)" json:"company"`
	AgencyID  uint64       `gorm:"not null;index:idx_clients_agency_status,priority:1" json:"agencyId"`
	Status    ClientStatus `gorm:"type:varchar(20);not null;default:'Lead';index:idx_clients_agency_status,priority:2" json:"status"`
	Notes     string       `gorm:"type:text" json:"notes"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
