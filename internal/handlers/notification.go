package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtask/internal/dto"
	apierrors "github.com/yukikurage/teamtask/internal/errors"
	"github.com/yukikurage/teamtask/internal/services"
)

// NotificationHandler serves the caller's own notifications.
type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	q := listQuery(c)
	items, total, err := h.notificationService.ListNotifications(userID, q)
	if err != nil {
		respondNotificationError(c, err)
		return
	}
	respondList(c, items, q, total)
}

func (h *NotificationHandler) GetNotification(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := entityID(c)
	if !ok {
		return
	}
	n, err := h.notificationService.GetNotification(id, userID, populate(c)...)
	if err != nil {
		respondNotificationError(c, err)
		return
	}
	respondData(c, http.StatusOK, n)
}

func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	data, ok := bindPayload[dto.NotificationData](c)
	if !ok {
		return
	}

	input := services.CreateNotificationInput{
		Title:   data.Title.Value,
		Message: data.Message.Value,
		Type:    data.Type.Value,
	}
	if data.User.ID != nil {
		input.UserID = *data.User.ID
	}

	n, err := h.notificationService.CreateNotification(input)
	if err != nil {
		respondNotificationError(c, err)
		return
	}
	respondData(c, http.StatusCreated, n)
}

// UpdateNotification only changes the read flag.
func (h *NotificationHandler) UpdateNotification(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := entityID(c)
	if !ok {
		return
	}
	data, ok := bindPayload[dto.NotificationData](c)
	if !ok {
		return
	}
	if !data.Read.Valid {
		apierrors.BadRequest(c, "only read can be updated")
		return
	}

	n, err := h.notificationService.SetRead(id, userID, data.Read.Value)
	if err != nil {
		respondNotificationError(c, err)
		return
	}
	respondData(c, http.StatusOK, n)
}

func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := entityID(c)
	if !ok {
		return
	}

	if err := h.notificationService.DeleteNotification(id, userID); err != nil {
		respondNotificationError(c, err)
		return
	}
	respondData(c, http.StatusOK, nil)
}

// DeleteNotificationTokens accepts push-token removal on logout. No push
// tokens are stored server-side, so it always succeeds.
func (h *NotificationHandler) DeleteNotificationTokens(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func respondNotificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotificationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotRecipient):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidNotification),
		errors.Is(err, services.ErrNotificationTitle),
		errors.Is(err, services.ErrRecipientNotFound),
		errors.Is(err, services.ErrNotificationRecipient):
		apierrors.BadRequest(c, err.Error())
	default:
		respondCommonError(c, err)
	}
}
