package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "inprogress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// ProjectTask is a unit of work owned by a user and optionally scoped to a team.
// Progress is stored as written by the owner; it is not derived from work packages.
type ProjectTask struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Deadline    *time.Time     `json:"deadline"`
	Progress    int            `gorm:"not null;default:0" json:"progress"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	OwnerID     uint64         `gorm:"not null;index" json:"-"`
	TeamID      *uint64        `gorm:"index" json:"-"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner        *User         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Team         *Team         `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	WorkPackages []WorkPackage `gorm:"foreignKey:ProjectTaskID" json:"workPackages,omitempty"`
}
