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
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username or email already exists")
	ErrUsernameRequired     = errors.New("username is required")
	ErrInvalidEmail         = errors.New("email is invalid")
	ErrInvalidRole          = errors.New("user type must be individual or corporate")
	ErrInvalidCredentials   = errors.New("invalid identifier or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
	ErrFailedToCreateTeam   = errors.New("failed to create company team")
	ErrFailedToAddMember    = errors.New("failed to add user to company team")
	ErrFailedToIssueToken   = errors.New("failed to issue token")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	jwtTTL    time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtTTL time.Duration) *AuthService {
	if jwtTTL <= 0 {
		jwtTTL = constants.DefaultJWTExpiry
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	Role        models.UserRole
	CompanyName string
}

// Register creates a new user. A corporate user with a company name also
// gets a team named after the company, led by the new user.
func (s *AuthService) Register(input RegisterInput) (*models.User, string, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, "", ErrUsernameRequired
	}
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if !strings.Contains(email, "@") {
		return nil, "", ErrInvalidEmail
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	role := input.Role
	if role == "" {
		role = models.RoleIndividual
	}
	if role != models.RoleIndividual && role != models.RoleCorporate {
		return nil, "", ErrInvalidRole
	}

	taken, err := s.userRepo.ExistsByUsernameOrEmail(username, email, 0)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, "", ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	companyName := strings.TrimSpace(input.CompanyName)
	if role == models.RoleCorporate && companyName != "" {
		team := &models.Team{
			Name:        companyName,
			Description: fmt.Sprintf("%s company team", companyName),
		}
		if err := s.userRepo.CreateWithTeam(user, team); err != nil {
			switch {
			case errors.Is(err, gorm.ErrDuplicatedKey):
				return nil, "", ErrUsernameTaken
			case errors.Is(err, repository.ErrCreateUser):
				return nil, "", ErrFailedToCreateUser
			case errors.Is(err, repository.ErrCreateTeam):
				return nil, "", ErrFailedToCreateTeam
			case errors.Is(err, repository.ErrAddTeamMember):
				return nil, "", ErrFailedToAddMember
			default:
				return nil, "", fmt.Errorf("failed to complete registration: %w", err)
			}
		}
	} else if err := s.userRepo.Create(user); err != nil {
		// The unique index catches a concurrent signup that passed the check above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrUsernameTaken
		}
		return nil, "", ErrFailedToCreateUser
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	created, err := s.GetUser(user.ID, "teams")
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Identifier string
	Password   string
}

// Login verifies credentials and returns the authenticated user and a token.
func (s *AuthService) Login(input LoginInput) (*models.User, string, error) {
	identifier := strings.TrimSpace(input.Identifier)
	user, err := s.userRepo.FindByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate resolves a bearer token to a user ID.
func (s *AuthService) Authenticate(token string) (uint64, error) {
	claims, err := utils.ParseJWTToken(token, s.jwtSecret)
	if err != nil {
		return 0, err
	}
	// Tokens of deleted accounts stop working immediately.
	if _, err := s.userRepo.FindByID(claims.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to find user: %w", err)
	}
	return claims.UserID, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64, populate ...string) (*models.User, error) {
	user, err := s.userRepo.FindByID(id, populate...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func (s *AuthService) issueToken(userID uint64) (string, error) {
	token, err := utils.GenerateJWTToken(userID, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToIssueToken, err)
	}
	return token, nil
}
