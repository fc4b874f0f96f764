package database

import (
	"fmt"
	"strings"

	"github.com/yukikurage/teamtask/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type index struct {
	model   interface{}
	name    string
	columns []string
}

// indexes used by the filtered list queries that AutoMigrate does not declare.
var indexes = []index{
	{&models.Notification{}, "idx_notifications_user_read", []string{"user_id", "read"}},
	{&models.Notification{}, "idx_notifications_created_at", []string{"created_at"}},
	{&models.ProjectTask{}, "idx_project_tasks_status", []string{"status"}},
	{&models.ProjectTask{}, "idx_project_tasks_deadline", []string{"deadline"}},
	{&models.WorkPackage{}, "idx_work_packages_status", []string{"status"}},
}

// AddIndexes creates the list-query indexes that do not exist yet.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	migrator := db.Migrator()

	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		columns := make([]string, len(idx.columns))
		for i, c := range idx.columns {
			columns[i] = stmt.Quote(c)
		}
		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
			stmt.Quote(idx.name), stmt.Quote(stmt.Schema.Table), strings.Join(columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("table", stmt.Schema.Table))
	}

	return nil
}
