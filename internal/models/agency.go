package models

import (
	"time"

	"gorm.io/datatypes"
)

// AgencySettings is stored as a single JSON document on the agency row.
type AgencySettings struct {
	Currency       string `json:"currency"`
	Logo           string `json:"logo,omitempty"`
	BrandColor     string `json:"brandColor"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	Website        string `json:"website,omitempty"`
}

const (
	DefaultCurrency   = "USD"
	DefaultBrandColor = "#000000"
	SetupBrandColor   = "#10b981"
)

type Agency struct {
	ID        uint64                             `gorm:"primarykey" json:"id"`
	Name      string                             `gorm:"type:varchar(255);not null" json:"name"`
	OwnerID   uint64                             `gorm:"not null;index" json:"ownerId"`
	Settings  datatypes.JSONType[AgencySettings] `json:"settings"`
	CreatedAt time.Time                          `json:"createdAt"`
	UpdatedAt time.Time                          `json:"updatedAt"`
}

// NewAgency builds an agency with default settings applied.
func NewAgency(name string, ownerID uint64, settings AgencySettings) *Agency {
	if settings.Currency == "" {
		settings.Currency = DefaultCurrency
	}
	if settings.BrandColor == "" {
		settings.BrandColor = DefaultBrandColor
	}
	return &Agency{
		Name:     name,
		OwnerID:  ownerID,
		Settings: datatypes.NewJSONType(settings),
	}
}

// Currency returns the agency billing currency.
func (a Agency) Currency() string {
	if c := a.Settings.Data().Currency; c != "" {
		return c
	}
	return DefaultCurrency
}
