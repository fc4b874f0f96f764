package repository

import (
	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task with its work packages. Either everything is
// written or nothing is.
func (r *GormTaskRepository) Create(task *models.ProjectTask, packages []models.WorkPackage, notifications []models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}

		if len(packages) > 0 {
			for i := range packages {
				packages[i].ProjectTaskID = task.ID
			}
			if err := tx.Omit(clause.Associations).Create(&packages).Error; err != nil {
				return err
			}
			task.WorkPackages = packages
		}

		return createNotifications(tx, notifications)
	})
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id uint64, populate ...string) (*models.ProjectTask, error) {
	return findOne[models.ProjectTask](r.db, taskSchema, id, populate)
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(q utils.ListQuery) ([]models.ProjectTask, int64, error) {
	return list[models.ProjectTask](r.db, taskSchema, q, nil)
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.ProjectTask, notifications []models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
			return err
		}
		return createNotifications(tx, notifications)
	})
}

// Delete soft deletes a task and its work packages
func (r *GormTaskRepository) Delete(id uint64, notifications []models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_task_id = ?", id).Delete(&models.WorkPackage{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ProjectTask{}, id).Error; err != nil {
			return err
		}
		return createNotifications(tx, notifications)
	})
}
