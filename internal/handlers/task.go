package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtask/internal/dto"
	apierrors "github.com/yukikurage/teamtask/internal/errors"
	"github.com/yukikurage/teamtask/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns tasks with owner, team and work packages
func (h *TaskHandler) ListTasks(c *gin.Context) {
	q := listQuery(c)
	tasks, total, err := h.taskService.ListTasks(q)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	respondList(c, tasks, q, total)
}

// GetTask returns a single task
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(id, populate(c)...)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	respondData(c, http.StatusOK, task)
}

// CreateTask creates a task owned by the caller. Nested workPackages are
// written in the same transaction.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	data, ok := bindPayload[dto.TaskData](c)
	if !ok {
		return
	}

	input := services.CreateTaskInput{
		Title:       data.Title.Value,
		Description: data.Description.Value,
		Deadline:    dto.TimePtr(data.Deadline),
		Progress:    data.Progress.Value,
		Status:      data.Status.Value,
		TeamID:      data.Team.ID,
		OwnerID:     userID,
	}
	for _, wp := range data.WorkPackages {
		input.WorkPackages = append(input.WorkPackages, workPackageFields(wp))
	}

	task, err := h.taskService.CreateTask(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	respondData(c, http.StatusCreated, task)
}

// UpdateTask updates a task the caller owns
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := entityID(c)
	if !ok {
		return
	}
	data, ok := bindPayload[dto.TaskData](c)
	if !ok {
		return
	}

	input := services.UpdateTaskInput{
		Title:         data.Title.Ptr(),
		Description:   data.Description.Ptr(),
		Deadline:      dto.TimePtr(data.Deadline),
		ClearDeadline: data.Deadline.Cleared(),
		Progress:      data.Progress.Ptr(),
		Status:        data.Status.Ptr(),
	}
	if data.Team.Set {
		input.TeamID = data.Team.ID
		input.ClearTeam = data.Team.ID == nil
	}

	task, err := h.taskService.UpdateTask(id, userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	respondData(c, http.StatusOK, task)
}

// DeleteTask deletes a task the caller owns together with its work packages
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := entityID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(id, userID); err != nil {
		respondTaskError(c, err)
		return
	}
	respondData(c, http.StatusOK, nil)
}

// SuggestWorkPackages proposes a work package breakdown for a task draft
func (h *TaskHandler) SuggestWorkPackages(c *gin.Context) {
	var req dto.SuggestWorkPackagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	suggestions, err := h.taskService.SuggestWorkPackages(c.Request.Context(), services.SuggestionInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    dto.TimePtr(req.Deadline),
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}
	respondData(c, http.StatusOK, suggestions)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTaskOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidProgress),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrTaskTeamNotFound),
		errors.Is(err, services.ErrWorkPackageNameRequired),
		errors.Is(err, services.ErrInvalidPercentage):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAINoSuggestions),
		errors.Is(err, services.ErrAINoValidSuggestions):
		apierrors.RespondWithError(c, apierrors.NewAPIError(http.StatusUnprocessableEntity, apierrors.ErrNameValidation, err.Error()))
	default:
		respondCommonError(c, err)
	}
}
