package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtask/internal/dto"
	apierrors "github.com/yukikurage/teamtask/internal/errors"
	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/services"
)

// UserHandler serves user listing and profile updates.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers returns a plain array, as the users endpoint does not paginate its envelope.
func (h *UserHandler) ListUsers(c *gin.Context) {
	q := listQuery(c)
	users, _, err := h.userService.ListUsers(q)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

// UpdateUser updates the caller's own profile.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	targetID, ok := entityID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateProfileInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != nil {
		role := models.UserRole(*req.Role)
		input.Role = &role
	}

	user, err := h.userService.UpdateProfile(userID, targetID, input)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotProfileOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrRoleImmutable),
		errors.Is(err, services.ErrUsernameRequired),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, err.Error())
	default:
		respondCommonError(c, err)
	}
}
