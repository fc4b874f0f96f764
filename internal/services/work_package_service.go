package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/teamtask/internal/constants"
	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/repository"
	"github.com/yukikurage/teamtask/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrWorkPackageNotFound     = errors.New("work package not found")
	ErrWorkPackageNameRequired = errors.New("work package name is required")
	ErrInvalidPercentage       = errors.New("percentage must be between 0 and 100")
	ErrProjectTaskRequired     = errors.New("project_task is required")
)

// WorkPackageFields are the writable columns of a work package.
type WorkPackageFields struct {
	Name       string
	Percentage int
	Deadline   *time.Time
	Status     models.TaskStatus
}

func (f WorkPackageFields) build() (models.WorkPackage, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return models.WorkPackage{}, ErrWorkPackageNameRequired
	}
	if f.Percentage < constants.MinProgress || f.Percentage > constants.MaxProgress {
		return models.WorkPackage{}, ErrInvalidPercentage
	}
	status := f.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	if !status.Valid() {
		return models.WorkPackage{}, ErrInvalidStatus
	}
	return models.WorkPackage{
		Name:       name,
		Percentage: f.Percentage,
		Deadline:   f.Deadline,
		Status:     status,
	}, nil
}

// UpdateWorkPackageInput represents input for updating a work package. Nil means unchanged.
type UpdateWorkPackageInput struct {
	Name          *string
	Percentage    *int
	Deadline      *time.Time
	ClearDeadline bool
	Status        *models.TaskStatus
}

// WorkPackageService handles work package business logic. Writes are
// reserved to the owner of the parent task.
type WorkPackageService struct {
	wpRepo   repository.WorkPackageRepository
	taskRepo repository.TaskRepository
}

// NewWorkPackageService creates a new WorkPackageService
func NewWorkPackageService(wpRepo repository.WorkPackageRepository, taskRepo repository.TaskRepository) *WorkPackageService {
	return &WorkPackageService{
		wpRepo:   wpRepo,
		taskRepo: taskRepo,
	}
}

func (s *WorkPackageService) ListWorkPackages(q utils.ListQuery) ([]models.WorkPackage, int64, error) {
	items, total, err := s.wpRepo.List(q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list work packages: %w", err)
	}
	return items, total, nil
}

func (s *WorkPackageService) GetWorkPackage(id uint64, populate ...string) (*models.WorkPackage, error) {
	wp, err := s.wpRepo.FindByID(id, populate...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkPackageNotFound
		}
		return nil, fmt.Errorf("failed to find work package: %w", err)
	}
	return wp, nil
}

// CreateWorkPackage adds a work package to a task the actor owns
func (s *WorkPackageService) CreateWorkPackage(actorID, taskID uint64, fields WorkPackageFields) (*models.WorkPackage, error) {
	if taskID == 0 {
		return nil, ErrProjectTaskRequired
	}
	if err := s.ensureTaskOwner(taskID, actorID); err != nil {
		return nil, err
	}

	wp, err := fields.build()
	if err != nil {
		return nil, err
	}
	wp.ProjectTaskID = taskID

	if err := s.wpRepo.Create(&wp); err != nil {
		return nil, fmt.Errorf("failed to create work package: %w", err)
	}
	return s.GetWorkPackage(wp.ID)
}

// UpdateWorkPackage updates a work package of a task the actor owns
func (s *WorkPackageService) UpdateWorkPackage(id, actorID uint64, input UpdateWorkPackageInput) (*models.WorkPackage, error) {
	wp, err := s.GetWorkPackage(id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTaskOwner(wp.ProjectTaskID, actorID); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrWorkPackageNameRequired
		}
		wp.Name = name
	}
	if input.Percentage != nil {
		if *input.Percentage < constants.MinProgress || *input.Percentage > constants.MaxProgress {
			return nil, ErrInvalidPercentage
		}
		wp.Percentage = *input.Percentage
	}
	if input.ClearDeadline {
		wp.Deadline = nil
	} else if input.Deadline != nil {
		wp.Deadline = input.Deadline
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		wp.Status = *input.Status
	}

	wp.ProjectTask = nil
	if err := s.wpRepo.Update(wp); err != nil {
		return nil, fmt.Errorf("failed to update work package: %w", err)
	}
	return s.GetWorkPackage(wp.ID)
}

// DeleteWorkPackage deletes a work package of a task the actor owns
func (s *WorkPackageService) DeleteWorkPackage(id, actorID uint64) error {
	wp, err := s.GetWorkPackage(id)
	if err != nil {
		return err
	}
	if err := s.ensureTaskOwner(wp.ProjectTaskID, actorID); err != nil {
		return err
	}
	if err := s.wpRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete work package: %w", err)
	}
	return nil
}

func (s *WorkPackageService) ensureTaskOwner(taskID, actorID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}
	if task.OwnerID != actorID {
		return ErrNotTaskOwner
	}
	return nil
}
