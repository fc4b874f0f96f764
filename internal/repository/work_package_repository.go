package repository

import (
	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWorkPackageRepository is a GORM implementation of WorkPackageRepository
type GormWorkPackageRepository struct {
	db *gorm.DB
}

// NewWorkPackageRepository creates a new WorkPackageRepository
func NewWorkPackageRepository(db *gorm.DB) WorkPackageRepository {
	return &GormWorkPackageRepository{db: db}
}

func (r *GormWorkPackageRepository) Create(wp *models.WorkPackage) error {
	return r.db.Omit(clause.Associations).Create(wp).Error
}

func (r *GormWorkPackageRepository) FindByID(id uint64, populate ...string) (*models.WorkPackage, error) {
	return findOne[models.WorkPackage](r.db, workPackageSchema, id, populate)
}

func (r *GormWorkPackageRepository) List(q utils.ListQuery) ([]models.WorkPackage, int64, error) {
	return list[models.WorkPackage](r.db, workPackageSchema, q, nil)
}

func (r *GormWorkPackageRepository) Update(wp *models.WorkPackage) error {
	return r.db.Omit(clause.Associations).Save(wp).Error
}

func (r *GormWorkPackageRepository) Delete(id uint64) error {
	return r.db.Delete(&models.WorkPackage{}, id).Error
}
