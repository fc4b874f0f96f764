package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtask/internal/dto"
	apierrors "github.com/yukikurage/teamtask/internal/errors"
	"github.com/yukikurage/teamtask/internal/services"
)

type WorkPackageHandler struct {
	wpService *services.WorkPackageService
}

func NewWorkPackageHandler(wpService *services.WorkPackageService) *WorkPackageHandler {
	return &WorkPackageHandler{wpService: wpService}
}

func (h *WorkPackageHandler) ListWorkPackages(c *gin.Context) {
	q := listQuery(c)
	items, total, err := h.wpService.ListWorkPackages(q)
	if err != nil {
		respondWorkPackageError(c, err)
		return
	}
	respondList(c, items, q, total)
}

func (h *WorkPackageHandler) GetWorkPackage(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	wp, err := h.wpService.GetWorkPackage(id, populate(c)...)
	if err != nil {
		respondWorkPackageError(c, err)
		return
	}
	respondData(c, http.StatusOK, wp)
}

func (h *WorkPackageHandler) CreateWorkPackage(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	data, ok := bindPayload[dto.WorkPackageData](c)
	if !ok {
		return
	}

	var taskID uint64
	if data.ProjectTask.ID != nil {
		taskID = *data.ProjectTask.ID
	}

	wp, err := h.wpService.CreateWorkPackage(userID, taskID, workPackageFields(data))
	if err != nil {
		respondWorkPackageError(c, err)
		return
	}
	respondData(c, http.StatusCreated, wp)
}

func (h *WorkPackageHandler) UpdateWorkPackage(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := entityID(c)
	if !ok {
		return
	}
	data, ok := bindPayload[dto.WorkPackageData](c)
	if !ok {
		return
	}

	wp, err := h.wpService.UpdateWorkPackage(id, userID, services.UpdateWorkPackageInput{
		Name:          data.Name.Ptr(),
		Percentage:    data.Percentage.Ptr(),
		Deadline:      dto.TimePtr(data.Deadline),
		ClearDeadline: data.Deadline.Cleared(),
		Status:        data.Status.Ptr(),
	})
	if err != nil {
		respondWorkPackageError(c, err)
		return
	}
	respondData(c, http.StatusOK, wp)
}

func (h *WorkPackageHandler) DeleteWorkPackage(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := entityID(c)
	if !ok {
		return
	}

	if err := h.wpService.DeleteWorkPackage(id, userID); err != nil {
		respondWorkPackageError(c, err)
		return
	}
	respondData(c, http.StatusOK, nil)
}

func workPackageFields(data dto.WorkPackageData) services.WorkPackageFields {
	return services.WorkPackageFields{
		Name:       data.Name.Value,
		Percentage: data.Percentage.Value,
		Deadline:   dto.TimePtr(data.Deadline),
		Status:     data.Status.Value,
	}
}

func respondWorkPackageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrWorkPackageNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.BadRequest(c, "the referenced project_task does not exist")
	case errors.Is(err, services.ErrNotTaskOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrWorkPackageNameRequired),
		errors.Is(err, services.ErrInvalidPercentage),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrProjectTaskRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		respondCommonError(c, err)
	}
}
