package repository

import (
	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithTeam creates a user and a team led by that user, with the
	// user as its first member, within a single transaction.
	CreateWithTeam(user *models.User, team *models.Team) error

	// FindByID finds a user by ID, preloading the requested relations
	FindByID(id uint64, populate ...string) (*models.User, error)

	// FindByIdentifier finds a user by username or email
	FindByIdentifier(identifier string) (*models.User, error)

	// ExistsByUsernameOrEmail reports whether either value is already taken
	ExistsByUsernameOrEmail(username, email string, excludeID uint64) (bool, error)

	// List retrieves users with filtering and pagination
	List(q utils.ListQuery) ([]models.User, int64, error)

	// Update updates a user's columns
	Update(user *models.User) error

	// CountByIDs counts how many of the given user IDs exist
	CountByIDs(ids []uint64) (int64, error)
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a team with its members and the notifications
	// announcing it in one transaction
	Create(team *models.Team, memberIDs []uint64, notifications []models.Notification) error

	// FindByID finds a team by ID with members and leader preloaded
	FindByID(id uint64, populate ...string) (*models.Team, error)

	// List retrieves teams with filtering and pagination
	List(q utils.ListQuery) ([]models.Team, int64, error)

	// Update saves team columns. A non-nil memberIDs replaces the member set.
	Update(team *models.Team, memberIDs []uint64, notifications []models.Notification) error

	// Delete soft deletes a team, detaching members and tasks
	Delete(id uint64, notifications []models.Notification) error

	// Exists reports whether a live team with the ID exists
	Exists(id uint64) (bool, error)
}

// TaskRepository defines the interface for project task data access
type TaskRepository interface {
	// Create creates a task, its work packages and notifications atomically
	Create(task *models.ProjectTask, packages []models.WorkPackage, notifications []models.Notification) error

	// FindByID finds a task by ID with owner, team and work packages preloaded
	FindByID(id uint64, populate ...string) (*models.ProjectTask, error)

	// List retrieves tasks with filtering and pagination
	List(q utils.ListQuery) ([]models.ProjectTask, int64, error)

	// Update saves task columns and notifications atomically
	Update(task *models.ProjectTask, notifications []models.Notification) error

	// Delete soft deletes a task and its work packages
	Delete(id uint64, notifications []models.Notification) error
}

// WorkPackageRepository defines the interface for work package data access
type WorkPackageRepository interface {
	Create(wp *models.WorkPackage) error
	FindByID(id uint64, populate ...string) (*models.WorkPackage, error)
	List(q utils.ListQuery) ([]models.WorkPackage, int64, error)
	Update(wp *models.WorkPackage) error
	Delete(id uint64) error
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(n *models.Notification) error

	// FindByID finds a notification by ID with its recipient preloaded
	FindByID(id uint64, populate ...string) (*models.Notification, error)

	// ListForUser lists notifications addressed to userID
	ListForUser(userID uint64, q utils.ListQuery) ([]models.Notification, int64, error)

	Update(n *models.Notification) error
	Delete(id uint64) error
}
