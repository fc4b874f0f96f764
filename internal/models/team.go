package models

import (
	"time"

	"gorm.io/gorm"
)

type Team struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	LeaderID    *uint64        `gorm:"index" json:"-"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Leader  *User         `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	Members []User        `gorm:"many2many:team_members;" json:"members,omitempty"`
	Tasks   []ProjectTask `gorm:"foreignKey:TeamID" json:"project_tasks,omitempty"`
}

// IsLeader reports whether userID leads the team.
func (t *Team) IsLeader(userID uint64) bool {
	return t.LeaderID != nil && *t.LeaderID == userID
}

// MemberIDs returns the ids of the loaded members.
func (t *Team) MemberIDs() []uint64 {
	ids := make([]uint64, len(t.Members))
	for i, m := range t.Members {
		ids[i] = m.ID
	}
	return ids
}
