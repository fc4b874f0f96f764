package services

import (
	"context"
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
	ErrTaskNotFound           = errors.New("task not found")
	ErrNotTaskOwner           = errors.New("only the task owner can perform this action")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrInvalidProgress        = errors.New("progress must be between 0 and 100")
	ErrInvalidStatus          = errors.New("status must be pending, inprogress or completed")
	ErrTaskTeamNotFound       = errors.New("the referenced team does not exist")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoSuggestions        = errors.New("AI did not suggest any work packages")
	ErrAINoValidSuggestions   = errors.New("no valid work packages could be built from AI output")
)

// TaskService handles project task business logic
type TaskService struct {
	taskRepo  repository.TaskRepository
	teamRepo  repository.TeamRepository
	suggester WorkPackageSuggester
}

// NewTaskService creates a new TaskService. suggester may be nil.
func NewTaskService(taskRepo repository.TaskRepository, teamRepo repository.TeamRepository, suggester WorkPackageSuggester) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		teamRepo:  teamRepo,
		suggester: suggester,
	}
}

// CreateTaskInput represents input for creating a task with its work packages
type CreateTaskInput struct {
	Title        string
	Description  string
	Deadline     *time.Time
	Progress     int
	Status       models.TaskStatus
	TeamID       *uint64
	OwnerID      uint64
	WorkPackages []WorkPackageFields
}

// UpdateTaskInput represents input for updating a task. Nil means unchanged.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Deadline      *time.Time
	ClearDeadline bool
	Progress      *int
	Status        *models.TaskStatus
	TeamID        *uint64
	ClearTeam     bool
}

// ListTasks returns tasks matching q
func (s *TaskService) ListTasks(q utils.ListQuery) ([]models.ProjectTask, int64, error) {
	tasks, total, err := s.taskRepo.List(q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask returns a task with owner, team and work packages
func (s *TaskService) GetTask(taskID uint64, populate ...string) (*models.ProjectTask, error) {
	task, err := s.taskRepo.FindByID(taskID, populate...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// CreateTask creates a task owned by input.OwnerID together with its work
// packages and the notifications for everyone involved
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.ProjectTask, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if err := validateProgress(input.Progress); err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	team, err := s.resolveTeam(input.TeamID)
	if err != nil {
		return nil, err
	}

	packages := make([]models.WorkPackage, 0, len(input.WorkPackages))
	for _, fields := range input.WorkPackages {
		wp, err := fields.build()
		if err != nil {
			return nil, err
		}
		packages = append(packages, wp)
	}

	task := &models.ProjectTask{
		Title:       title,
		Description: input.Description,
		Deadline:    input.Deadline,
		Progress:    input.Progress,
		Status:      input.Status,
		OwnerID:     input.OwnerID,
		TeamID:      input.TeamID,
	}

	notifications := fanOut(models.NotificationTaskCreated,
		"Task created", taskMessage("created", task), taskRecipients(task, team)...)

	if err := s.taskRepo.Create(task, packages, notifications); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.GetTask(task.ID)
}

// UpdateTask updates a task when the actor owns it
func (s *TaskService) UpdateTask(taskID, actorID uint64, input UpdateTaskInput) (*models.ProjectTask, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != actorID {
		return nil, ErrNotTaskOwner
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.ClearDeadline {
		task.Deadline = nil
	} else if input.Deadline != nil {
		task.Deadline = input.Deadline
	}
	if input.Progress != nil {
		if err := validateProgress(*input.Progress); err != nil {
			return nil, err
		}
		task.Progress = *input.Progress
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.ClearTeam {
		task.TeamID = nil
	} else if input.TeamID != nil {
		task.TeamID = input.TeamID
	}

	team, err := s.resolveTeam(task.TeamID)
	if err != nil {
		return nil, err
	}

	notifications := fanOut(models.NotificationTaskUpdated,
		"Task updated", taskMessage("updated", task), taskRecipients(task, team)...)

	task.Owner, task.Team, task.WorkPackages = nil, nil, nil
	if err := s.taskRepo.Update(task, notifications); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetTask(task.ID)
}

// DeleteTask deletes a task and its work packages when the actor owns it
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	task, err := s.GetTask(taskID)
	if err != nil {
		return err
	}
	if task.OwnerID != actorID {
		return ErrNotTaskOwner
	}

	var team *models.Team
	if task.TeamID != nil {
		// A team deleted in the meantime only shrinks the audience.
		found, err := s.teamRepo.FindByID(*task.TeamID)
		switch {
		case err == nil:
			team = found
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to load task team: %w", err)
		}
	}

	notifications := fanOut(models.NotificationTaskDeleted,
		"Task deleted", taskMessage("deleted", task), taskRecipients(task, team)...)

	if err := s.taskRepo.Delete(taskID, notifications); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// SuggestWorkPackages asks the AI backend for a breakdown of a task
func (s *TaskService) SuggestWorkPackages(ctx context.Context, input SuggestionInput) ([]SuggestedWorkPackage, error) {
	if s.suggester == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	suggestions, err := s.suggester.SuggestWorkPackages(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest work packages: %w", err)
	}

	if len(suggestions) == 0 {
		return nil, ErrAINoSuggestions
	}
	if len(suggestions) > constants.MaxAISuggestedWorkPackages {
		suggestions = suggestions[:constants.MaxAISuggestedWorkPackages]
	}

	valid := make([]SuggestedWorkPackage, 0, len(suggestions))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, sp := range suggestions {
		sp.Name = strings.TrimSpace(sp.Name)
		if sp.Name == "" {
			continue
		}
		if sp.Percentage < constants.MinProgress || sp.Percentage > constants.MaxProgress {
			sp.Percentage = 0
		}
		if sp.Deadline != nil && sp.Deadline.Before(cutoff) {
			sp.Deadline = nil
		}
		if sp.Deadline != nil && input.Deadline != nil && sp.Deadline.After(*input.Deadline) {
			sp.Deadline = input.Deadline
		}
		valid = append(valid, sp)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidSuggestions
	}
	return valid, nil
}

// resolveTeam loads the team a task points at, members included.
func (s *TaskService) resolveTeam(teamID *uint64) (*models.Team, error) {
	if teamID == nil {
		return nil, nil
	}
	team, err := s.teamRepo.FindByID(*teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

func validateProgress(progress int) error {
	if progress < constants.MinProgress || progress > constants.MaxProgress {
		return ErrInvalidProgress
	}
	return nil
}
