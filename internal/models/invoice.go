package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

type Invoice struct {
	ID            uint64          `gorm:"primarykey" json:"id"`
	InvoiceNumber string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"invoiceNumber"`
	ProjectID     uint64          `gorm:"not null;index" json:"projectId"`
	ClientID      uint64          `gorm:"not null;index:idx_invoices_client_status,priority:1" json:"clientId"`
	AgencyID      uint64          `gorm:"not null;index:idx_invoices_agency_status,priority:1" json:"agencyId"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency      string          `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	Status        InvoiceStatus   `gorm:"type:varchar(20);not null;default:'pending';index:idx_invoices_agency_status,priority:2;index:idx_invoices_client_status,priority:2" json:"status"`
	DueDate       time.Time       `gorm:"not null" json:"dueDate"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	// Relations
	Items   []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
	Project Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Client  Client        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

type InvoiceItem struct {
	ID          uint64          `gorm:"primarykey" json:"id"`
	InvoiceID   uint64          `gorm:"not null;index" json:"-"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price"`
}

// Total returns quantity × price.
func (i InvoiceItem) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumItems returns the sum of every item total.
func SumItems(items []InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Total())
	}
	return total
}
