package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/agency-hub/internal/errors"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/services"
)

type ClientHandler struct {
	clientService *services.ClientService
}

func NewClientHandler(clientService *services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

type clientRequest struct {
	Name    *string              `json:"name"`
	Email   *string              `json:"email"`
	Company *string              `json:"company"`
	Status  *models.ClientStatus `json:"status"`
	Notes   *string              `json:"notes"`
}

func (r clientRequest) input() services.ClientInput {
	return services.ClientInput{
		Name:    r.Name,
		Email:   r.Email,
		Company: r.Company,
		Status:  r.Status,
		Notes:   r.Notes,
	}
}

func (h *ClientHandler) ListClients(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	clients, err := h.clientService.ListClients(p)
	if err != nil {
		respondClientError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *ClientHandler) GetClient(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "client")
	if !ok {
		return
	}
	client, err := h.clientService.GetClient(p, id)
	if err != nil {
		respondClientError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	client, err := h.clientService.CreateClient(p, req.input())
	if err != nil {
		respondClientError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) UpdateClient(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "client")
	if !ok {
		return
	}
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	client, err := h.clientService.UpdateClient(p, id, req.input())
	if err != nil {
		respondClientError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) DeleteClient(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "client")
	if !ok {
		return
	}
	if err := h.clientService.DeleteClient(p, id); err != nil {
		respondClientError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client removed"})
}

func respondClientError(c *gin.Context, err error) {
	if respondCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrClientNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrClientNameRequired),
		errors.Is(err, services.ErrClientEmailRequired),
		errors.Is(err, services.ErrInvalidClientStatus):
		apierrors.BadRequest(c, err.Error())
	default:
		respondUnexpected(c, err)
	}
}
