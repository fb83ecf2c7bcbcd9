package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/policy"
	"github.com/yukikurage/agency-hub/internal/repository"
)

var (
	ErrClientNotFound      = errors.New("client not found")
	ErrClientNameRequired  = errors.New("client name is required")
	ErrClientEmailRequired = errors.New("client email is required")
	ErrInvalidClientStatus = errors.New("client status must be one of Lead, Active, Past")
)

// ClientService manages the customer records of an agency.
type ClientService struct {
	clientRepo repository.ClientRepository
}

func NewClientService(clientRepo repository.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

type ClientInput struct {
	Name    *string
	Email   *string
	Company *string
	Status  *models.ClientStatus
	Notes   *string
}

func (s *ClientService) ListClients(p policy.Principal) ([]models.Client, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}
	clients, err := s.clientRepo.List(agencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (s *ClientService) GetClient(p policy.Principal, id uint64) (*models.Client, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.FindByID(id, agencyID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return client, nil
}

func (s *ClientService) CreateClient(p policy.Principal, input ClientInput) (*models.Client, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}

	client := &models.Client{
		AgencyID: agencyID,
		Status:   models.ClientStatusLead,
	}
	if err := applyClientInput(client, input); err != nil {
		return nil, err
	}
	if client.Name == "" {
		return nil, ErrClientNameRequired
	}
	if client.Email == "" {
		return nil, ErrClientEmailRequired
	}

	if err := s.clientRepo.Create(client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func (s *ClientService) UpdateClient(p policy.Principal, id uint64, input ClientInput) (*models.Client, error) {
	client, err := s.GetClient(p, id)
	if err != nil {
		return nil, err
	}
	if err := applyClientInput(client, input); err != nil {
		return nil, err
	}
	if client.Name == "" {
		return nil, ErrClientNameRequired
	}
	if client.Email == "" {
		return nil, ErrClientEmailRequired
	}

	if err := s.clientRepo.Update(client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

func (s *ClientService) DeleteClient(p policy.Principal, id uint64) error {
	agencyID, err := requireAgency(p)
	if err != nil {
		return err
	}
	if err := s.clientRepo.Delete(id, agencyID); err != nil {
		if isNotFound(err) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

func applyClientInput(client *models.Client, input ClientInput) error {
	if input.Name != nil {
		client.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		client.Email = normalizeEmail(*input.Email)
	}
	if input.Company != nil {
		client.Company = strings.TrimSpace(*input.Company)
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return ErrInvalidClientStatus
		}
		client.Status = *input.Status
	}
	if input.Notes != nil {
		client.Notes = *input.Notes
	}
	return nil
}
