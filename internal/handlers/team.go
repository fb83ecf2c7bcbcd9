package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/agency-hub/internal/constants"
	"github.com/yukikurage/agency-hub/internal/dto"
	apierrors "github.com/yukikurage/agency-hub/internal/errors"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/services"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// ListTeam returns every agency user except the caller
func (h *TeamHandler) ListTeam(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	users, err := h.teamService.ListTeam(p)
	if err != nil {
		respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

func (h *TeamHandler) GetMember(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	user, err := h.teamService.GetMember(p, id)
	if err != nil {
		respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// AddMember creates a member or a client login inside the agency
func (h *TeamHandler) AddMember(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	type AddMemberRequest struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
		ClientID *uint64     `json:"clientId"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.teamService.AddMember(p, services.AddTeamMemberInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		ClientID: req.ClientID,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

func (h *TeamHandler) UpdateMember(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	type UpdateMemberRequest struct {
		Name     *string      `json:"name"`
		Role     *models.Role `json:"role"`
		ClientID *uint64      `json:"clientId"`
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.teamService.UpdateMember(p, id, services.UpdateTeamMemberInput{
		Name:     req.Name,
		Role:     req.Role,
		ClientID: req.ClientID,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateStatus activates or deactivates a team member
func (h *TeamHandler) UpdateStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	type StatusRequest struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "isActive is required")
		return
	}

	user, err := h.teamService.SetActive(p, id, *req.IsActive)
	if err != nil {
		respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// ResetPassword sets a new password for a team member
func (h *TeamHandler) ResetPassword(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}

	type PasswordRequest struct {
		NewPassword string `json:"newPassword"`
	}

	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.teamService.ResetPassword(p, id, req.NewPassword); err != nil {
		respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (h *TeamHandler) RemoveMember(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	if err := h.teamService.RemoveMember(p, id); err != nil {
		respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Team member removed"})
}

func respondTeamError(c *gin.Context, err error) {
	if respondCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrTeamMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrNewPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrCannotModifyOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrCannotDeactivateSelf),
		errors.Is(err, services.ErrCannotRemoveYourself),
		errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrInvalidTeamRole),
		errors.Is(err, services.ErrClientLinkRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		respondUnexpected(c, err)
	}
}
