package models

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTaskCreated       NotificationType = "task_created"
	NotificationTaskUpdated       NotificationType = "task_updated"
	NotificationTaskDeleted       NotificationType = "task_deleted"
	NotificationTeamCreated       NotificationType = "team_created"
	NotificationTeamInvitation    NotificationType = "team_invitation"
	NotificationTeamMemberAdded   NotificationType = "team_member_added"
	NotificationTeamMemberRemoved NotificationType = "team_member_removed"
	NotificationTeamDeleted       NotificationType = "team_deleted"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTaskCreated, NotificationTaskUpdated, NotificationTaskDeleted,
		NotificationTeamCreated, NotificationTeamInvitation, NotificationTeamMemberAdded,
		NotificationTeamMemberRemoved, NotificationTeamDeleted:
		return true
	}
	return false
}

// Notification targets exactly one recipient.
type Notification struct {
	ID        uint64           `gorm:"primarykey" json:"id"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Type      NotificationType `gorm:"type:varchar(40);not null" json:"type"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	UserID    uint64           `gorm:"not null;index" json:"-"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
