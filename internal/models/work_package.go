package models

import (
	"time"

	"gorm.io/gorm"
)

// WorkPackage is a slice of a project task. Percentages of sibling packages
// are not required to add up to any total.
type WorkPackage struct {
	ID            uint64         `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Percentage    int            `gorm:"not null;default:0" json:"percentage"`
	Deadline      *time.Time     `json:"deadline"`
	Status        TaskStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ProjectTaskID uint64         `gorm:"not null;index" json:"-"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	ProjectTask *ProjectTask `gorm:"foreignKey:ProjectTaskID" json:"project_task,omitempty"`
}
