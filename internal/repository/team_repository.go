package repository

import (
	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// teamMember maps the team_members join table created for Team.Members.
type teamMember struct {
	TeamID uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"primaryKey"`
}

func (teamMember) TableName() string {
	return "team_members"
}

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a team together with its member links and notifications
func (r *GormTeamRepository) Create(team *models.Team, memberIDs []uint64, notifications []models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(team).Error; err != nil {
			return err
		}
		if err := replaceMembers(tx, team.ID, memberIDs); err != nil {
			return err
		}
		return createNotifications(tx, notifications)
	})
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(id uint64, populate ...string) (*models.Team, error) {
	return findOne[models.Team](r.db, teamSchema, id, populate)
}

// List retrieves teams with filtering and pagination
func (r *GormTeamRepository) List(q utils.ListQuery) ([]models.Team, int64, error) {
	return list[models.Team](r.db, teamSchema, q, nil)
}

// Update saves the team and optionally replaces its member set
func (r *GormTeamRepository) Update(team *models.Team, memberIDs []uint64, notifications []models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(team).Error; err != nil {
			return err
		}
		if memberIDs != nil {
			if err := replaceMembers(tx, team.ID, memberIDs); err != nil {
				return err
			}
		}
		return createNotifications(tx, notifications)
	})
}

// Delete soft deletes a team. Member links are removed and tasks lose their team.
func (r *GormTeamRepository) Delete(id uint64, notifications []models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&teamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProjectTask{}).
			Where("team_id = ?", id).
			Update("team_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Team{}, id).Error; err != nil {
			return err
		}
		return createNotifications(tx, notifications)
	})
}

// Exists reports whether a team with the ID exists
func (r *GormTeamRepository) Exists(id uint64) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Team{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// replaceMembers sets the member links of a team to exactly userIDs.
func replaceMembers(tx *gorm.DB, teamID uint64, userIDs []uint64) error {
	if err := tx.Where("team_id = ?", teamID).Delete(&teamMember{}).Error; err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	rows := make([]teamMember, len(userIDs))
	for i, userID := range userIDs {
		rows[i] = teamMember{TeamID: teamID, UserID: userID}
	}
	return tx.Create(&rows).Error
}

func createNotifications(tx *gorm.DB, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).Create(&notifications).Error
}
