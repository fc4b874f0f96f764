package repository

import (
	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(n *models.Notification) error {
	return r.db.Omit(clause.Associations).Create(n).Error
}

func (r *GormNotificationRepository) FindByID(id uint64, populate ...string) (*models.Notification, error) {
	return findOne[models.Notification](r.db, notificationSchema, id, populate)
}

// ListForUser lists notifications addressed to userID. Client filters narrow
// the result further but never widen it past the recipient.
func (r *GormNotificationRepository) ListForUser(userID uint64, q utils.ListQuery) ([]models.Notification, int64, error) {
	return list[models.Notification](r.db, notificationSchema, q, func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: notificationSchema.column("user_id"), Value: userID})
	})
}

func (r *GormNotificationRepository) Update(n *models.Notification) error {
	return r.db.Omit(clause.Associations).Save(n).Error
}

func (r *GormNotificationRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Notification{}, id).Error
}
