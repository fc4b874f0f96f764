package dto

import (
	"time"

	"github.com/yukikurage/teamtask/internal/models"
)

// TeamSummaryDTO is a team as listed on a user.
type TeamSummaryDTO struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64           `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	Role      models.UserRole  `json:"role"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Teams     []TeamSummaryDTO `json:"teams,omitempty"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	JWT  string  `json:"jwt"`
	User UserDTO `json:"user"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	for _, team := range user.Teams {
		dto.Teams = append(dto.Teams, TeamSummaryDTO{
			ID:          team.ID,
			Name:        team.Name,
			Description: team.Description,
		})
	}
	return dto
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}
