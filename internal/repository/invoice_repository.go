package repository

import (
	"time"

	"github.com/yukikurage/agency-hub/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository is a GORM implementation of InvoiceRepository
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Create inserts the invoice and its line items
func (r *GormInvoiceRepository) Create(invoice *models.Invoice) error {
	return r.db.Omit("Project", "Client").Create(invoice).Error
}

// FindByID finds an invoice visible through scope
func (r *GormInvoiceRepository) FindByID(id uint64, scope Scope) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.Model(&models.Invoice{}).
		Scopes(scope).
		Preload("Items").
		Preload("Project").
		Preload("Client").
		Where("invoices.id = ?", id).
		First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// List retrieves invoices visible through scope, newest first
func (r *GormInvoiceRepository) List(scope Scope) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Model(&models.Invoice{}).
		Scopes(scope).
		Preload("Items").
		Preload("Project").
		Preload("Client").
		Order("invoices.created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

// Update saves the invoice; a non-nil items slice replaces the line items
func (r *GormInvoiceRepository) Update(invoice *models.Invoice, items []models.InvoiceItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(invoice).Error; err != nil {
			return err
		}
		if items == nil {
			return nil
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].InvoiceID = invoice.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		invoice.Items = items
		return nil
	})
}

// Delete removes an invoice and its line items
func (r *GormInvoiceRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Invoice{}, id).Error
	})
}

// ListPastDue returns pending invoices due before the cutoff
func (r *GormInvoiceRepository) ListPastDue(cutoff time.Time) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.
		Where("status = ? AND due_date < ?", models.InvoiceStatusPending, cutoff.UTC()).
		Find(&invoices).Error
	return invoices, err
}

// TransitionStatus moves an invoice from one status to another only while it
// still holds the from status. It reports whether this call made the change.
func (r *GormInvoiceRepository) TransitionStatus(id uint64, from, to models.InvoiceStatus) (bool, error) {
	result := r.db.Model(&models.Invoice{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
