package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/agency-hub/internal/dto"
	apierrors "github.com/yukikurage/agency-hub/internal/errors"
	"github.com/yukikurage/agency-hub/internal/services"
)

type AgencyHandler struct {
	agencyService *services.AgencyService
	authService   *services.AuthService
}

func NewAgencyHandler(agencyService *services.AgencyService, authService *services.AuthService) *AgencyHandler {
	return &AgencyHandler{
		agencyService: agencyService,
		authService:   authService,
	}
}

// GetAgency returns the settings of the caller's agency
func (h *AgencyHandler) GetAgency(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	agency, err := h.agencyService.GetAgency(p)
	if err != nil {
		respondAgencyError(c, err)
		return
	}
	c.JSON(http.StatusOK, agency)
}

// UpdateAgency accepts JSON, or multipart form data when a logo file is uploaded
func (h *AgencyHandler) UpdateAgency(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	type UpdateAgencyRequest struct {
		Name           string `json:"name" form:"name"`
		BrandColor     string `json:"brandColor" form:"brandColor"`
		SecondaryColor string `json:"secondaryColor" form:"secondaryColor"`
		Website        string `json:"website" form:"website"`
		Currency       string `json:"currency" form:"currency"`
		LogoURL        string `json:"logoUrl" form:"logoUrl"`
	}

	var req UpdateAgencyRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateAgencyInput{
		Name:           req.Name,
		BrandColor:     req.BrandColor,
		SecondaryColor: req.SecondaryColor,
		Website:        req.Website,
		Currency:       req.Currency,
		LogoURL:        req.LogoURL,
	}

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		if header, err := c.FormFile("logo"); err == nil {
			file, err := header.Open()
			if err != nil {
				apierrors.BadRequest(c, "Unable to read logo file")
				return
			}
			defer file.Close()
			input.Logo = &services.LogoUpload{Filename: header.Filename, Content: file}
		} else if !errors.Is(err, http.ErrMissingFile) {
			apierrors.BadRequest(c, "Invalid logo upload")
			return
		}
	}

	agency, err := h.agencyService.UpdateAgency(c.Request.Context(), p, input)
	if err != nil {
		respondAgencyError(c, err)
		return
	}
	c.JSON(http.StatusOK, agency)
}

// SetupAgency creates the first agency of a user who has none and returns a refreshed token
func (h *AgencyHandler) SetupAgency(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	type SetupAgencyRequest struct {
		Name       string `json:"name"`
		Website    string `json:"website"`
		BrandColor string `json:"brandColor"`
	}

	var req SetupAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	agency, err := h.agencyService.SetupAgency(p.UserID, services.SetupAgencyInput{
		Name:       req.Name,
		Website:    req.Website,
		BrandColor: req.BrandColor,
	})
	if err != nil {
		respondAgencyError(c, err)
		return
	}

	result, err := h.authService.Refresh(p.UserID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"agency": agency,
		"token":  result.Token,
		"user":   dto.ToUserDTO(*result.User),
	})
}

func respondAgencyError(c *gin.Context, err error) {
	if respondCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrAgencyNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAgencyAlreadySetUp),
		errors.Is(err, services.ErrInvalidAgencyName),
		errors.Is(err, services.ErrUnsupportedLogo):
		apierrors.BadRequest(c, err.Error())
	default:
		respondUnexpected(c, err)
	}
}
