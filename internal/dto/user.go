package dto

import (
	"github.com/yukikurage/agency-hub/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64         `json:"id"`
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Role     models.Role    `json:"role"`
	AgencyID *uint64        `json:"agencyId"`
	ClientID *uint64        `json:"clientId"`
	IsActive bool           `json:"isActive"`
	Client   *ClientSummary `json:"client,omitempty"`
}

// UserSummaryDTO is the short form embedded in tasks and comments
type UserSummaryDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ClientSummary struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
}

// AuthResponse is returned by register, login and clerk-sync
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// ToUserDTO converts a user model to DTO
func ToUserDTO(user models.User) UserDTO {
	out := UserDTO{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		AgencyID: user.AgencyID,
		ClientID: user.ClientID,
		IsActive: user.IsActive,
	}
	if user.Client != nil {
		out.Client = &ClientSummary{
			ID:      user.Client.ID,
			Name:    user.Client.Name,
			Company: user.Client.Company,
		}
	}
	return out
}

func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

func ToUserSummary(user models.User) UserSummaryDTO {
	return UserSummaryDTO{ID: user.ID, Name: user.Name, Email: user.Email}
}
