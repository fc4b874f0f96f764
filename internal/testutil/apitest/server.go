// Package apitest runs the full API on an in-memory database for client tests.
package apitest

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtask/internal/handlers"
	"github.com/yukikurage/teamtask/internal/repository"
	"github.com/yukikurage/teamtask/internal/services"
	"github.com/yukikurage/teamtask/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server is a running API. BaseURL already includes the /api prefix.
type Server struct {
	*httptest.Server
	BaseURL string
	DB      *gorm.DB
	Auth    *services.AuthService
}

// NewServer starts the router and stops it on test cleanup.
func NewServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)

	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	auth := services.NewAuthService(userRepo, "apitest-secret", time.Hour)

	router := handlers.NewRouter(handlers.Services{
		Auth:          auth,
		Users:         services.NewUserService(userRepo),
		Tasks:         services.NewTaskService(taskRepo, teamRepo, nil),
		Teams:         services.NewTeamService(teamRepo, userRepo),
		WorkPackages:  services.NewWorkPackageService(repository.NewWorkPackageRepository(db), taskRepo),
		Notifications: services.NewNotificationService(repository.NewNotificationRepository(db), userRepo),
	}, nil, zap.NewNop())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &Server{Server: srv, BaseURL: srv.URL + "/api", DB: db, Auth: auth}
}

// Register creates an individual account and returns its id and token.
func (s *Server) Register(t *testing.T, username, password string) (uint64, string) {
	t.Helper()
	user, token, err := s.Auth.Register(services.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user.ID, token
}
