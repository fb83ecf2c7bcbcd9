package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/agency-hub/internal/constants"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/policy"
	"github.com/yukikurage/agency-hub/internal/repository"
)

var (
	ErrTeamMemberNotFound   = errors.New("team member not found")
	ErrInvalidTeamRole      = errors.New("role must be member or client")
	ErrClientLinkRequired   = errors.New("client users must be linked to a client of the agency")
	ErrCannotDeactivateSelf = errors.New("you cannot deactivate your own account")
	ErrCannotRemoveYourself = errors.New("you cannot remove yourself from the agency")
	ErrCannotModifyOwner    = errors.New("the agency owner cannot be modified here")
	ErrNewPasswordTooShort  = errors.New("new password too short")
)

// TeamService manages the users of an agency on behalf of its owner.
type TeamService struct {
	userRepo   repository.UserRepository
	clientRepo repository.ClientRepository
}

func NewTeamService(userRepo repository.UserRepository, clientRepo repository.ClientRepository) *TeamService {
	return &TeamService{userRepo: userRepo, clientRepo: clientRepo}
}

type AddTeamMemberInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
	ClientID *uint64
}

type UpdateTeamMemberInput struct {
	Name     *string
	Role     *models.Role
	ClientID *uint64
}

// ListTeam returns every user of the agency except the requester.
func (s *TeamService) ListTeam(p policy.Principal) ([]models.User, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListByAgency(agencyID, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team: %w", err)
	}
	return users, nil
}

func (s *TeamService) GetMember(p policy.Principal, id uint64) (*models.User, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindInAgency(id, agencyID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTeamMemberNotFound
		}
		return nil, fmt.Errorf("failed to find team member: %w", err)
	}
	return user, nil
}

// AddMember creates a member or client-role user inside the owner's agency.
func (s *TeamService) AddMember(p policy.Principal, input AddTeamMemberInput) (*models.User, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := input.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleMember && role != models.RoleClient {
		return nil, ErrInvalidTeamRole
	}

	var clientID *uint64
	if role == models.RoleClient {
		if clientID, err = s.clientLink(input.ClientID, agencyID); err != nil {
			return nil, err
		}
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		AgencyID:     &agencyID,
		ClientID:     clientID,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create team member: %w", err)
	}
	return s.GetMember(p, user.ID)
}

// UpdateMember changes the name, role or client link of a team member.
func (s *TeamService) UpdateMember(p policy.Principal, id uint64, input UpdateTeamMemberInput) (*models.User, error) {
	user, err := s.editable(p, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		user.Name = name
	}
	if input.Role != nil {
		if *input.Role != models.RoleMember && *input.Role != models.RoleClient {
			return nil, ErrInvalidTeamRole
		}
		user.Role = *input.Role
	}

	switch {
	case user.Role == models.RoleMember:
		user.ClientID = nil
	case input.ClientID != nil || user.ClientID == nil:
		link := input.ClientID
		if link == nil {
			link = user.ClientID
		}
		if user.ClientID, err = s.clientLink(link, *user.AgencyID); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update team member: %w", err)
	}
	return s.GetMember(p, user.ID)
}

// SetActive activates or deactivates a team member. Inactive users cannot log in.
func (s *TeamService) SetActive(p policy.Principal, id uint64, active bool) (*models.User, error) {
	if id == p.UserID && !active {
		return nil, ErrCannotDeactivateSelf
	}
	user, err := s.GetMember(p, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update team member status: %w", err)
	}
	return user, nil
}

// ResetPassword replaces a team member's password.
func (s *TeamService) ResetPassword(p policy.Principal, id uint64, newPassword string) error {
	if len(newPassword) < constants.MinPasswordLength {
		return ErrNewPasswordTooShort
	}
	user, err := s.GetMember(p, id)
	if err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

func (s *TeamService) RemoveMember(p policy.Principal, id uint64) error {
	if id == p.UserID {
		return ErrCannotRemoveYourself
	}
	user, err := s.editable(p, id)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(user.ID); err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	return nil
}

func (s *TeamService) editable(p policy.Principal, id uint64) (*models.User, error) {
	user, err := s.GetMember(p, id)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleOwner {
		return nil, ErrCannotModifyOwner
	}
	return user, nil
}

func (s *TeamService) clientLink(clientID *uint64, agencyID uint64) (*uint64, error) {
	if clientID == nil {
		return nil, ErrClientLinkRequired
	}
	client, err := s.clientRepo.FindByID(*clientID, agencyID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrClientLinkRequired
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return &client.ID, nil
}
