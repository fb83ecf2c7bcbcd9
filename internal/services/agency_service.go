package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/policy"
	"github.com/yukikurage/agency-hub/internal/repository"
	"github.com/yukikurage/agency-hub/internal/storage"
	"gorm.io/datatypes"
)

var (
	ErrAgencyNotFound     = errors.New("agency not found")
	ErrAgencyAlreadySetUp = errors.New("user already has an agency")
	ErrInvalidAgencyName  = errors.New("agency name cannot be empty")
	ErrUnsupportedLogo    = errors.New("logo must be an image")
)

// AgencyService provides business logic for agency settings.
type AgencyService struct {
	agencyRepo repository.AgencyRepository
	userRepo   repository.UserRepository
	files      storage.FileStorage
}

// NewAgencyService creates a new AgencyService.
func NewAgencyService(agencyRepo repository.AgencyRepository, userRepo repository.UserRepository, files storage.FileStorage) *AgencyService {
	return &AgencyService{
		agencyRepo: agencyRepo,
		userRepo:   userRepo,
		files:      files,
	}
}

// GetAgency returns the agency the principal belongs to.
func (s *AgencyService) GetAgency(p policy.Principal) (*models.Agency, error) {
	if p.AgencyID == nil {
		return nil, ErrAgencyNotFound
	}
	agency, err := s.agencyRepo.FindByID(*p.AgencyID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAgencyNotFound
		}
		return nil, fmt.Errorf("failed to find agency: %w", err)
	}
	return agency, nil
}

// LogoUpload is a logo file received with the settings form.
type LogoUpload struct {
	Filename string
	Content  io.Reader
}

// UpdateAgencyInput holds the settings to change; empty values are left untouched.
type UpdateAgencyInput struct {
	Name           string
	BrandColor     string
	SecondaryColor string
	Website        string
	Currency       string
	LogoURL        string
	Logo           *LogoUpload
}

// UpdateAgency applies settings changes. An uploaded logo wins over a logo URL.
func (s *AgencyService) UpdateAgency(ctx context.Context, p policy.Principal, input UpdateAgencyInput) (*models.Agency, error) {
	agency, err := s.GetAgency(p)
	if err != nil {
		return nil, err
	}

	settings := agency.Settings.Data()
	if name := strings.TrimSpace(input.Name); name != "" {
		agency.Name = name
	}
	if input.BrandColor != "" {
		settings.BrandColor = input.BrandColor
	}
	if input.SecondaryColor != "" {
		settings.SecondaryColor = input.SecondaryColor
	}
	if input.Website != "" {
		settings.Website = input.Website
	}
	if input.Currency != "" {
		settings.Currency = strings.ToUpper(input.Currency)
	}

	switch {
	case input.Logo != nil:
		if !storage.IsImage(input.Logo.Filename) {
			return nil, ErrUnsupportedLogo
		}
		url, err := s.files.Save(ctx, fmt.Sprintf("logos/%d", agency.ID), input.Logo.Filename, input.Logo.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to store logo: %w", err)
		}
		settings.Logo = url
	case strings.TrimSpace(input.LogoURL) != "":
		settings.Logo = strings.TrimSpace(input.LogoURL)
	}

	agency.Settings = datatypes.NewJSONType(settings)
	if err := s.agencyRepo.Update(agency); err != nil {
		return nil, fmt.Errorf("failed to update agency: %w", err)
	}
	return agency, nil
}

// SetupAgencyInput represents parameters to create the first agency of a user.
type SetupAgencyInput struct {
	Name       string
	Website    string
	BrandColor string
}

// SetupAgency creates an agency for a user who has none and makes them its owner.
func (s *AgencyService) SetupAgency(userID uint64, input SetupAgencyInput) (*models.Agency, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidAgencyName
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user.AgencyID != nil {
		return nil, ErrAgencyAlreadySetUp
	}

	brandColor := input.BrandColor
	if brandColor == "" {
		brandColor = models.SetupBrandColor
	}
	agency := models.NewAgency(name, user.ID, models.AgencySettings{
		BrandColor: brandColor,
		Website:    input.Website,
	})

	if err := s.agencyRepo.SetupForUser(user, agency); err != nil {
		return nil, fmt.Errorf("failed to set up agency: %w", err)
	}
	return agency, nil
}
