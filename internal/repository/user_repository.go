package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside the signup transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateTeam is returned when creating the company team fails inside the signup transaction.
	ErrCreateTeam = errors.New("user repository: create team failed")
	// ErrAddTeamMember is returned when linking the user to the company team fails.
	ErrAddTeamMember = errors.New("user repository: add team member failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Omit(clause.Associations).Create(user).Error
}

// CreateWithTeam creates a user, a team they lead, and the membership atomically.
func (r *GormUserRepository) CreateWithTeam(user *models.User, team *models.Team) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateUser, err)
		}

		team.LeaderID = &user.ID
		if err := tx.Omit(clause.Associations).Create(team).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateTeam, err)
		}

		if err := replaceMembers(tx, team.ID, []uint64{user.ID}); err != nil {
			return fmt.Errorf("%w: %v", ErrAddTeamMember, err)
		}

		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64, populate ...string) (*models.User, error) {
	return findOne[models.User](r.db, userSchema, id, populate)
}

// FindByIdentifier finds a user by username or email
func (r *GormUserRepository) FindByIdentifier(identifier string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsernameOrEmail reports whether another user holds the username or email
func (r *GormUserRepository) ExistsByUsernameOrEmail(username, email string, excludeID uint64) (bool, error) {
	var count int64
	query := r.db.Model(&models.User{}).Where("username = ? OR email = ?", username, email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List retrieves users with filtering and pagination
func (r *GormUserRepository) List(q utils.ListQuery) ([]models.User, int64, error) {
	return list[models.User](r.db, userSchema, q, nil)
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Omit(clause.Associations).Save(user).Error
}

// CountByIDs counts how many of the given user IDs exist
func (r *GormUserRepository) CountByIDs(ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.Model(&models.User{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}
