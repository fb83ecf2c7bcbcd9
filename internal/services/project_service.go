package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/policy"
	"github.com/yukikurage/agency-hub/internal/realtime"
	"github.com/yukikurage/agency-hub/internal/repository"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectNameRequired  = errors.New("project name is required")
	ErrInvalidProjectStatus = errors.New("project status must be one of planning, active, completed, on-hold")
	ErrNegativeBudget       = errors.New("budget cannot be negative")
)

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo   repository.ProjectRepository
	clientRepo    repository.ClientRepository
	notifications *NotificationService
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, clientRepo repository.ClientRepository, notifications *NotificationService) *ProjectService {
	return &ProjectService{
		projectRepo:   projectRepo,
		clientRepo:    clientRepo,
		notifications: notifications,
	}
}

type ProjectInput struct {
	Name          *string
	Description   *string
	ClientID      *uint64
	Status        *models.ProjectStatus
	Budget        *decimal.Decimal
	Deadline      *time.Time
	ClearDeadline bool
}

// ListProjects returns the projects visible to the principal.
func (s *ProjectService) ListProjects(p policy.Principal) ([]models.Project, error) {
	scope, err := scopeFor(p)
	if err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.List(scope.Projects)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project when it is visible to the principal.
func (s *ProjectService) GetProject(p policy.Principal, id uint64) (*models.Project, error) {
	scope, err := scopeFor(p)
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.FindByID(id, scope.Projects)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) CreateProject(p policy.Principal, input ProjectInput) (*models.Project, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		AgencyID: agencyID,
		Status:   models.ProjectStatusPlanning,
		Budget:   decimal.Zero,
	}
	if err := s.apply(project, input); err != nil {
		return nil, err
	}
	if project.Name == "" {
		return nil, ErrProjectNameRequired
	}
	if project.ClientID == 0 {
		return nil, ErrClientNotFound
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return s.GetProject(p, project.ID)
}

// UpdateProject applies changes and announces them to the client's room.
func (s *ProjectService) UpdateProject(ctx context.Context, p policy.Principal, id uint64, input ProjectInput) (*models.Project, error) {
	project, err := s.GetProject(p, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(project, input); err != nil {
		return nil, err
	}
	if project.Name == "" {
		return nil, ErrProjectNameRequired
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.notifications.Broadcast(ctx, realtime.ClientRoom(project.ClientID), BroadcastInput{
		SenderID: senderOf(p),
		Type:     models.NotificationProjectUpdated,
		Title:    "Project Updated",
		Message:  fmt.Sprintf("Project %q has been updated.", project.Name),
		Entity:   models.RelatedEntity{EntityType: models.EntityProject, EntityID: ptr(project.ID)},
	})

	return s.GetProject(p, project.ID)
}

func (s *ProjectService) DeleteProject(p policy.Principal, id uint64) error {
	project, err := s.GetProject(p, id)
	if err != nil {
		return err
	}
	if err := s.projectRepo.Delete(project.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (s *ProjectService) apply(project *models.Project, input ProjectInput) error {
	if input.Name != nil {
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.ClientID != nil && *input.ClientID != project.ClientID {
		if _, err := s.clientRepo.FindByID(*input.ClientID, project.AgencyID); err != nil {
			if isNotFound(err) {
				return ErrClientNotFound
			}
			return fmt.Errorf("failed to find client: %w", err)
		}
		project.ClientID = *input.ClientID
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return ErrInvalidProjectStatus
		}
		project.Status = *input.Status
	}
	if input.Budget != nil {
		if input.Budget.IsNegative() {
			return ErrNegativeBudget
		}
		project.Budget = *input.Budget
	}
	if input.ClearDeadline {
		project.Deadline = nil
	} else if input.Deadline != nil {
		project.Deadline = input.Deadline
	}
	return nil
}
