package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/policy"
	"github.com/yukikurage/agency-hub/internal/repository"
)

var (
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvoiceProjectNeeded = errors.New("project is required")
	ErrInvoiceDueDateNeeded = errors.New("due date is required")
	ErrInvoiceAmountNeeded  = errors.New("amount or line items are required")
	ErrNegativeAmount       = errors.New("amount cannot be negative")
	ErrInvalidInvoiceStatus = errors.New("status must be one of pending, paid, overdue, cancelled")
	ErrInvalidInvoiceItem   = errors.New("line items need a description, a positive quantity and a non-negative price")
)

// InvoiceService handles invoice business logic
type InvoiceService struct {
	invoiceRepo   repository.InvoiceRepository
	projectRepo   repository.ProjectRepository
	agencyRepo    repository.AgencyRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	numbers       *snowflake.Node
}

// NewInvoiceService creates a new InvoiceService. numbers generates invoice numbers.
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	projectRepo repository.ProjectRepository,
	agencyRepo repository.AgencyRepository,
	userRepo repository.UserRepository,
	notifications *NotificationService,
	numbers *snowflake.Node,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:   invoiceRepo,
		projectRepo:   projectRepo,
		agencyRepo:    agencyRepo,
		userRepo:      userRepo,
		notifications: notifications,
		numbers:       numbers,
	}
}

type InvoiceItemInput struct {
	Description string
	Quantity    int
	Price       decimal.Decimal
}

// CreateInvoiceInput represents input for creating an invoice
type CreateInvoiceInput struct {
	ProjectID uint64
	Amount    *decimal.Decimal
	Currency  string
	Status    models.InvoiceStatus
	DueDate   *time.Time
	Items     []InvoiceItemInput
	Notes     string
}

// UpdateInvoiceInput represents input for editing an invoice; nil fields are kept
type UpdateInvoiceInput struct {
	Amount   *decimal.Decimal
	Currency *string
	DueDate  *time.Time
	Items    []InvoiceItemInput
	Notes    *string
}

// ListInvoices returns the invoices visible to the principal
func (s *InvoiceService) ListInvoices(p policy.Principal) ([]models.Invoice, error) {
	scope, err := scopeFor(p)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.List(scope.Invoices)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// GetInvoice returns an invoice when it is visible to the principal
func (s *InvoiceService) GetInvoice(p policy.Principal, id uint64) (*models.Invoice, error) {
	scope, err := scopeFor(p)
	if err != nil {
		return nil, err
	}
	invoice, err := s.invoiceRepo.FindByID(id, scope.Invoices)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to find invoice: %w", err)
	}
	return invoice, nil
}

// CreateInvoice bills a project of the principal's agency and notifies the client's users.
// When line items are given the amount is their sum; otherwise the supplied amount is stored.
func (s *InvoiceService) CreateInvoice(ctx context.Context, p policy.Principal, input CreateInvoiceInput) (*models.Invoice, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}
	if input.ProjectID == 0 {
		return nil, ErrInvoiceProjectNeeded
	}
	if input.DueDate == nil {
		return nil, ErrInvoiceDueDateNeeded
	}

	scope, err := scopeFor(p)
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.FindByID(input.ProjectID, scope.Projects)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	items, err := buildItems(input.Items)
	if err != nil {
		return nil, err
	}
	amount, err := resolveAmount(input.Amount, items)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.InvoiceStatusPending
	}
	if !status.Valid() {
		return nil, ErrInvalidInvoiceStatus
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = s.agencyCurrency(agencyID)
	}

	invoice := &models.Invoice{
		InvoiceNumber: s.nextNumber(),
		ProjectID:     project.ID,
		ClientID:      project.ClientID,
		AgencyID:      agencyID,
		Amount:        amount,
		Currency:      currency,
		Status:        status,
		DueDate:       input.DueDate.UTC(),
		Notes:         input.Notes,
		Items:         items,
	}
	if err := s.invoiceRepo.Create(invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.notifyClientUsers(ctx, senderOf(p), project.ClientID, NotifyInput{
		Type:    models.NotificationInvoiceGenerated,
		Title:   "New Invoice Generated",
		Message: fmt.Sprintf("A new invoice %s has been generated for project %s.", invoice.InvoiceNumber, project.Name),
		Entity:  invoiceEntity(invoice.ID),
	})

	return s.GetInvoice(p, invoice.ID)
}

// UpdateInvoice edits the amount, line items, due date, notes or currency
func (s *InvoiceService) UpdateInvoice(p policy.Principal, id uint64, input UpdateInvoiceInput) (*models.Invoice, error) {
	invoice, err := s.GetInvoice(p, id)
	if err != nil {
		return nil, err
	}

	var items []models.InvoiceItem
	if input.Items != nil {
		if items, err = buildItems(input.Items); err != nil {
			return nil, err
		}
		if invoice.Amount, err = resolveAmount(input.Amount, items); err != nil {
			return nil, err
		}
	} else if input.Amount != nil {
		if input.Amount.IsNegative() {
			return nil, ErrNegativeAmount
		}
		invoice.Amount = *input.Amount
	}
	if input.Currency != nil && strings.TrimSpace(*input.Currency) != "" {
		invoice.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
	}
	if input.DueDate != nil {
		invoice.DueDate = input.DueDate.UTC()
	}
	if input.Notes != nil {
		invoice.Notes = *input.Notes
	}

	if err := s.invoiceRepo.Update(invoice, items); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	return s.GetInvoice(p, invoice.ID)
}

// UpdateStatus moves the invoice to a new status and tells the client's users
func (s *InvoiceService) UpdateStatus(ctx context.Context, p policy.Principal, id uint64, status models.InvoiceStatus) (*models.Invoice, error) {
	if !status.Valid() {
		return nil, ErrInvalidInvoiceStatus
	}
	invoice, err := s.GetInvoice(p, id)
	if err != nil {
		return nil, err
	}

	invoice.Status = status
	if err := s.invoiceRepo.Update(invoice, nil); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	notificationType := models.NotificationGeneral
	if status == models.InvoiceStatusPaid {
		notificationType = models.NotificationInvoicePaid
	}
	s.notifyClientUsers(ctx, senderOf(p), invoice.ClientID, NotifyInput{
		Type:    notificationType,
		Title:   "Invoice Status Updated",
		Message: fmt.Sprintf("Your invoice %s status has been updated to %s.", invoice.InvoiceNumber, status),
		Entity:  invoiceEntity(invoice.ID),
	})

	return invoice, nil
}

// DeleteInvoice removes an invoice and its line items
func (s *InvoiceService) DeleteInvoice(p policy.Principal, id uint64) error {
	invoice, err := s.GetInvoice(p, id)
	if err != nil {
		return err
	}
	if err := s.invoiceRepo.Delete(invoice.ID); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

// MarkOverdue flags pending invoices due before now as overdue and notifies the
// client users of each invoice this call changed. An invoice paid or flagged by
// another run after it was listed is skipped. It returns how many invoices changed.
func (s *InvoiceService) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	invoices, err := s.invoiceRepo.ListPastDue(now)
	if err != nil {
		return 0, fmt.Errorf("failed to list past due invoices: %w", err)
	}

	changed := 0
	for _, inv := range invoices {
		ok, err := s.invoiceRepo.TransitionStatus(inv.ID, models.InvoiceStatusPending, models.InvoiceStatusOverdue)
		if err != nil {
			return changed, fmt.Errorf("failed to mark invoice %d overdue: %w", inv.ID, err)
		}
		if !ok {
			continue
		}
		changed++

		s.notifyClientUsers(ctx, nil, inv.ClientID, NotifyInput{
			Type:    models.NotificationGeneral,
			Title:   "Invoice Overdue",
			Message: fmt.Sprintf("Your invoice %s is now overdue.", inv.InvoiceNumber),
			Entity:  invoiceEntity(inv.ID),
		})
	}

	return changed, nil
}

func (s *InvoiceService) notifyClientUsers(ctx context.Context, sender *uint64, clientID uint64, input NotifyInput) {
	users, err := s.userRepo.ListClientUsers(clientID)
	if err != nil {
		log.Error().Err(err).Uint64("client_id", clientID).Msg("Error loading client users for notification")
		return
	}
	for _, u := range users {
		in := input
		in.RecipientID = u.ID
		in.SenderID = sender
		s.notifications.Notify(ctx, in)
	}
}

func (s *InvoiceService) agencyCurrency(agencyID uint64) string {
	agency, err := s.agencyRepo.FindByID(agencyID)
	if err != nil {
		return models.DefaultCurrency
	}
	return agency.Currency()
}

func (s *InvoiceService) nextNumber() string {
	return "INV-" + s.numbers.Generate().String()
}

func buildItems(inputs []InvoiceItemInput) ([]models.InvoiceItem, error) {
	items := make([]models.InvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		description := strings.TrimSpace(in.Description)
		if description == "" || in.Quantity <= 0 || in.Price.IsNegative() {
			return nil, ErrInvalidInvoiceItem
		}
		items = append(items, models.InvoiceItem{
			Description: description,
			Quantity:    in.Quantity,
			Price:       in.Price,
		})
	}
	return items, nil
}

func resolveAmount(amount *decimal.Decimal, items []models.InvoiceItem) (decimal.Decimal, error) {
	if len(items) > 0 {
		return models.SumItems(items), nil
	}
	if amount == nil {
		return decimal.Zero, ErrInvoiceAmountNeeded
	}
	if amount.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return *amount, nil
}

func invoiceEntity(id uint64) models.RelatedEntity {
	return models.RelatedEntity{EntityType: models.EntityInvoice, EntityID: ptr(id)}
}
