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

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

type projectRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	ClientID    *uint64               `json:"clientId"`
	Status      *models.ProjectStatus `json:"status"`
	Budget      *decimal.Decimal      `json:"budget"`
	Deadline    dto.Date              `json:"deadline"`
}

func (r projectRequest) input() services.ProjectInput {
	return services.ProjectInput{
		Name:          r.Name,
		Description:   r.Description,
		ClientID:      r.ClientID,
		Status:        r.Status,
		Budget:        r.Budget,
		Deadline:      r.Deadline.Time,
		ClearDeadline: r.Deadline.Cleared(),
	}
}

// ListProjects returns the projects visible to the caller's role
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	projects, err := h.projectService.ListProjects(p)
	if err != nil {
		respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "project")
	if !ok {
		return
	}
	project, err := h.projectService.GetProject(p, id)
	if err != nil {
		respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	project, err := h.projectService.CreateProject(p, req.input())
	if err != nil {
		respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "project")
	if !ok {
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	project, err := h.projectService.UpdateProject(c.Request.Context(), p, id, req.input())
	if err != nil {
		respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "project")
	if !ok {
		return
	}
	if err := h.projectService.DeleteProject(p, id); err != nil {
		respondProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project removed"})
}

func respondProjectError(c *gin.Context, err error) {
	if respondCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrClientNotFound):
		apierrors.BadRequest(c, "Client not found")
	case errors.Is(err, services.ErrProjectNameRequired),
		errors.Is(err, services.ErrInvalidProjectStatus),
		errors.Is(err, services.ErrNegativeBudget):
		apierrors.BadRequest(c, err.Error())
	default:
		respondUnexpected(c, err)
	}
}
