package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleIndividual UserRole = "individual"
	RoleCorporate  UserRole = "corporate"
	RoleAdmin      UserRole = "admin"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleIndividual, RoleCorporate, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole       `gorm:"type:varchar(20);not null;default:'individual'" json:"role"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Teams      []Team        `gorm:"many2many:team_members;" json:"teams,omitempty"`
	OwnedTasks []ProjectTask `gorm:"foreignKey:OwnerID" json:"-"`
}
