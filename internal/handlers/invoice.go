package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yukikurage/agency-hub/internal/dto"
	apierrors "github.com/yukikurage/agency-hub/internal/errors"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/services"
)

type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

func NewInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

type invoiceItemRequest struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func itemInputs(items []invoiceItemRequest) []services.InvoiceItemInput {
	if items == nil {
		return nil
	}
	out := make([]services.InvoiceItemInput, len(items))
	for i, it := range items {
		out[i] = services.InvoiceItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			Price:       it.Price,
		}
	}
	return out
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	invoices, err := h.invoiceService.ListInvoices(p)
	if err != nil {
		respondInvoiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.GetInvoice(p, id)
	if err != nil {
		respondInvoiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	type CreateInvoiceRequest struct {
		ProjectID uint64               `json:"projectId"`
		Amount    *decimal.Decimal     `json:"amount"`
		Currency  string               `json:"currency"`
		Status    models.InvoiceStatus `json:"status"`
		DueDate   dto.Date             `json:"dueDate"`
		Items     []invoiceItemRequest `json:"items"`
		Notes     string               `json:"notes"`
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), p, services.CreateInvoiceInput{
		ProjectID: req.ProjectID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Status:    req.Status,
		DueDate:   req.DueDate.Time,
		Items:     itemInputs(req.Items),
		Notes:     req.Notes,
	})
	if err != nil {
		respondInvoiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}

	type UpdateInvoiceRequest struct {
		Amount   *decimal.Decimal     `json:"amount"`
		Currency *string              `json:"currency"`
		DueDate  dto.Date             `json:"dueDate"`
		Items    []invoiceItemRequest `json:"items"`
		Notes    *string              `json:"notes"`
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(p, id, services.UpdateInvoiceInput{
		Amount:   req.Amount,
		Currency: req.Currency,
		DueDate:  req.DueDate.Time,
		Items:    itemInputs(req.Items),
		Notes:    req.Notes,
	})
	if err != nil {
		respondInvoiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// UpdateStatus moves an invoice through pending, paid, overdue and cancelled
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}

	type StatusRequest struct {
		Status models.InvoiceStatus `json:"status" binding:"required"`
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "status is required")
		return
	}

	invoice, err := h.invoiceService.UpdateStatus(c.Request.Context(), p, id, req.Status)
	if err != nil {
		respondInvoiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}
	if err := h.invoiceService.DeleteInvoice(p, id); err != nil {
		respondInvoiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice removed"})
}

func respondInvoiceError(c *gin.Context, err error) {
	if respondCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrInvoiceNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrInvoiceProjectNeeded),
		errors.Is(err, services.ErrInvoiceDueDateNeeded),
		errors.Is(err, services.ErrInvoiceAmountNeeded),
		errors.Is(err, services.ErrNegativeAmount),
		errors.Is(err, services.ErrInvalidInvoiceStatus),
		errors.Is(err, services.ErrInvalidInvoiceItem):
		apierrors.BadRequest(c, err.Error())
	default:
		respondUnexpected(c, err)
	}
}
