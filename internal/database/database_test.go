package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/teamtask/internal/config"
	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/utils"
	"go.uber.org/zap"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		d, err := Dialector(&config.Config{DBDriver: driver, DBPath: ":memory:"})
		require.NoError(t, err)
		require.Equal(t, driver, d.Name())
	}

	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	require.Error(t, err)
}

func TestConnectAndMigrate_SQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DBPath: ":memory:", GinMode: "release"}

	db, err := Connect(cfg, zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db, zap.NewNop()))
	require.True(t, db.Migrator().HasIndex(&models.Notification{}, "idx_notifications_user_read"))

	// Running again must skip existing indexes.
	require.NoError(t, Migrate(db, zap.NewNop()))

	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&models.User{
			Username:     "user" + string(rune('a'+i)),
			Email:        string(rune('a'+i)) + "@example.com",
			PasswordHash: "x",
		}).Error)
	}

	var users []models.User
	params := utils.PaginationParams{Page: 2, PageSize: 2, Offset: 2}
	require.NoError(t, db.Scopes(Paginate(params)).Order("id").Find(&users).Error)
	require.Len(t, users, 2)
	require.Equal(t, "userc", users[0].Username)
}
