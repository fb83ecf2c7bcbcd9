package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/agency-hub/internal/constants"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/repository"
	"github.com/yukikurage/agency-hub/internal/token"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken           = errors.New("user already exists")
	ErrNameRequired         = errors.New("name is required")
	ErrEmailRequired        = errors.New("email is required")
	ErrAgencyNameRequired   = errors.New("agency name is required for new workspace registration")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountInactive      = errors.New("your account is inactive, please contact your agency owner")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
	ErrFailedToCreateAgency = errors.New("failed to create agency")
	ErrFailedToIssueToken   = errors.New("failed to issue token")

	ErrExternalAuthDisabled = errors.New("external sign-in is not configured")
	ErrExternalAuthInvalid  = errors.New("external identity could not be verified")
	ErrExternalAuthMismatch = errors.New("account is linked to a different external identity")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo   repository.UserRepository
	agencyRepo repository.AgencyRepository
	clientRepo repository.ClientRepository
	tokens     *token.Manager
	identities *token.IdentityVerifier
}

// NewAuthService creates a new AuthService. identities may be nil, which disables external sign-in.
func NewAuthService(userRepo repository.UserRepository, agencyRepo repository.AgencyRepository, clientRepo repository.ClientRepository, tokens *token.Manager, identities *token.IdentityVerifier) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		agencyRepo: agencyRepo,
		clientRepo: clientRepo,
		tokens:     tokens,
		identities: identities,
	}
}

// AuthResult is a signed token together with the user it was issued for.
type AuthResult struct {
	Token string
	User  *models.User
}

// RegisterInput represents the required information to open a new workspace.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	AgencyName string
}

// Register creates an owner together with the agency they own and signs them in.
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	agencyName := strings.TrimSpace(input.AgencyName)

	if name == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if agencyName == "" {
		return nil, ErrAgencyNameRequired
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         models.RoleOwner,
		IsActive:     true,
	}
	agency := models.NewAgency(agencyName, 0, models.AgencySettings{})

	if err := s.userRepo.CreateWithAgency(user, agency); err != nil {
		switch {
		case errors.Is(err, repository.ErrCreateUser):
			return nil, ErrFailedToCreateUser
		case errors.Is(err, repository.ErrCreateAgency),
			errors.Is(err, repository.ErrLinkAgency):
			return nil, ErrFailedToCreateAgency
		default:
			return nil, fmt.Errorf("failed to complete registration: %w", err)
		}
	}

	return s.issue(user)
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials, repairs missing tenant links and issues a token.
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(normalizeEmail(input.Email))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.repairLinks(user); err != nil {
		return nil, err
	}

	return s.issue(user)
}

// repairLinks attaches an owner to the agency they own, and a client-role
// user to the agency client sharing their email.
func (s *AuthService) repairLinks(user *models.User) error {
	changed := false

	if user.Role == models.RoleOwner && user.AgencyID == nil {
		agency, err := s.agencyRepo.FindByOwnerID(user.ID)
		switch {
		case err == nil:
			user.AgencyID = &agency.ID
			changed = true
		case !isNotFound(err):
			return fmt.Errorf("failed to look up owned agency: %w", err)
		}
	}

	if user.Role == models.RoleClient && user.ClientID == nil && user.AgencyID != nil {
		client, err := s.clientRepo.FindByEmail(user.Email, *user.AgencyID)
		switch {
		case err == nil:
			user.ClientID = &client.ID
			changed = true
		case !isNotFound(err):
			return fmt.Errorf("failed to look up client record: %w", err)
		}
	}

	if !changed {
		return nil
	}

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to repair user links: %w", err)
	}
	log.Info().Uint64("user_id", user.ID).Str("role", string(user.Role)).Msg("Repaired user tenant links on login")
	return nil
}

// ExternalSyncInput carries the identity provider's session token. ExternalID, when
// sent, must match the token subject; Name is only a display fallback.
type ExternalSyncInput struct {
	IdentityToken string
	ExternalID    string
	Name          string
}

// SyncExternal verifies a federated identity, then finds or creates its local user and
// issues a token. An email already linked to another external id is refused.
// New identities are provisioned as owners without an agency; they finish with agency setup.
func (s *AuthService) SyncExternal(input ExternalSyncInput) (*AuthResult, error) {
	if s.identities == nil {
		return nil, ErrExternalAuthDisabled
	}
	identity, err := s.identities.Verify(input.IdentityToken)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected external identity token")
		return nil, ErrExternalAuthInvalid
	}
	if input.ExternalID != "" && input.ExternalID != identity.Subject {
		return nil, ErrExternalAuthMismatch
	}

	email := normalizeEmail(identity.Email)
	user, err := s.userRepo.FindByEmail(email)
	switch {
	case err == nil:
		if user.ExternalID != nil && *user.ExternalID != identity.Subject {
			return nil, ErrExternalAuthMismatch
		}
		if !user.IsActive {
			return nil, ErrAccountInactive
		}
		if user.ExternalID == nil {
			user.ExternalID = ptr(identity.Subject)
			if err := s.userRepo.Update(user); err != nil {
				return nil, fmt.Errorf("failed to link external identity: %w", err)
			}
		}
	case isNotFound(err):
		hashedPassword, err := hashPassword(uuid.NewString())
		if err != nil {
			return nil, err
		}

		name := strings.TrimSpace(identity.Name)
		if name == "" {
			name = strings.TrimSpace(input.Name)
		}
		if name == "" {
			name = email
		}

		user = &models.User{
			Name:         name,
			Email:        email,
			PasswordHash: hashedPassword,
			Role:         models.RoleOwner,
			ExternalID:   ptr(identity.Subject),
			IsActive:     true,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, ErrFailedToCreateUser
		}
	default:
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return s.issue(user)
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// Refresh issues a new token reflecting the user's current role and tenant binding.
func (s *AuthService) Refresh(userID uint64) (*AuthResult, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	signed, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToIssueToken, err)
	}
	return &AuthResult{Token: signed, User: user}, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hashed), nil
}
