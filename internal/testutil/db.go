// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/teamtask/internal/config"
	"github.com/yukikurage/teamtask/internal/database"
	"github.com/yukikurage/teamtask/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewDB opens a migrated in-memory sqlite database that is closed when t ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Connect(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"}, zap.NewNop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection to :memory: would open a separate database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db, zap.NewNop()))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		Role:         models.RoleIndividual,
	}
	require.NoError(t, db.Omit("Teams", "OwnedTasks").Create(user).Error)
	return user
}

// CreateTeam inserts a team led by leader with the given members.
func CreateTeam(t testing.TB, db *gorm.DB, name string, leader *models.User, members ...*models.User) *models.Team {
	t.Helper()

	team := &models.Team{Name: name, LeaderID: &leader.ID}
	team.Members = append(team.Members, *leader)
	for _, m := range members {
		team.Members = append(team.Members, *m)
	}
	require.NoError(t, db.Omit("Leader", "Tasks", "Members.*").Create(team).Error)
	return team
}

// CreateTask inserts a task owned by owner, optionally in a team.
func CreateTask(t testing.TB, db *gorm.DB, title string, owner *models.User, team *models.Team) *models.ProjectTask {
	t.Helper()

	task := &models.ProjectTask{
		Title:   title,
		OwnerID: owner.ID,
		Status:  models.TaskStatusPending,
	}
	if team != nil {
		task.TeamID = &team.ID
	}
	require.NoError(t, db.Omit("Owner", "Team", "WorkPackages").Create(task).Error)
	return task
}

// CreateNotification inserts a notification for recipient.
func CreateNotification(t testing.TB, db *gorm.DB, recipient *models.User, title string, read bool) *models.Notification {
	t.Helper()

	n := &models.Notification{
		Title:   title,
		Message: title,
		Type:    models.NotificationTaskCreated,
		Read:    read,
		UserID:  recipient.ID,
	}
	require.NoError(t, db.Omit("User").Create(n).Error)
	return n
}
