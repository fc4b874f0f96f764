package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtask/internal/constants"
	"github.com/yukikurage/teamtask/internal/dto"
	apierrors "github.com/yukikurage/teamtask/internal/errors"
	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a user and returns a token for it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", map[string]string{"reason": err.Error()})
		return
	}

	user, token, err := h.authService.Register(services.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Role:        models.UserRole(req.UserType),
		CompanyName: req.CompanyName,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{JWT: token, User: dto.ToUserDTO(*user)})
}

// Login authenticates by username or email and returns a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid identifier or password")
		return
	}

	user, token, err := h.authService.Login(services.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{JWT: token, User: dto.ToUserDTO(*user)})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(userID, populate(c)...)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			// The token outlived its user.
			apierrors.Unauthorized(c, "")
			return
		}
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrUsernameRequired),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.BadRequest(c, "Email or Username are already taken")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.BadRequest(c, "Invalid identifier or password")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFailedToHashPassword),
		errors.Is(err, services.ErrFailedToCreateUser),
		errors.Is(err, services.ErrFailedToCreateTeam),
		errors.Is(err, services.ErrFailedToAddMember),
		errors.Is(err, services.ErrFailedToIssueToken):
		apierrors.InternalError(c, err.Error())
	default:
		respondCommonError(c, err)
	}
}
