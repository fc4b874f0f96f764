package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/repository"
	"github.com/yukikurage/teamtask/internal/testutil"
	"github.com/yukikurage/teamtask/internal/utils"
	"gorm.io/gorm"
)

type stubSuggester struct {
	packages []SuggestedWorkPackage
	err      error
}

func (s stubSuggester) SuggestWorkPackages(context.Context, SuggestionInput) ([]SuggestedWorkPackage, error) {
	return s.packages, s.err
}

type ServiceTestSuite struct {
	suite.Suite
	db            *gorm.DB
	users         repository.UserRepository
	taskRepo      repository.TaskRepository
	auth          *AuthService
	userService   *UserService
	teams         *TeamService
	tasks         *TaskService
	workPackages  *WorkPackageService
	notifications *NotificationService
}

func (s *ServiceTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.users = repository.NewUserRepository(s.db)
	teamRepo := repository.NewTeamRepository(s.db)
	taskRepo := repository.NewTaskRepository(s.db)
	s.taskRepo = taskRepo

	s.auth = NewAuthService(s.users, "test-secret", time.Hour)
	s.userService = NewUserService(s.users)
	s.teams = NewTeamService(teamRepo, s.users)
	s.tasks = NewTaskService(taskRepo, teamRepo, nil)
	s.workPackages = NewWorkPackageService(repository.NewWorkPackageRepository(s.db), taskRepo)
	s.notifications = NewNotificationService(repository.NewNotificationRepository(s.db), s.users)
}

func (s *ServiceTestSuite) notificationsFor(userID uint64, kind models.NotificationType) int64 {
	var count int64
	s.db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", userID, kind).Count(&count)
	return count
}

func (s *ServiceTestSuite) TestRegisterCorporateCreatesCompanyTeam() {
	user, token, err := s.auth.Register(RegisterInput{
		Username:    "acme",
		Email:       "Owner@Acme.test",
		Password:    "secret1",
		Role:        models.RoleCorporate,
		CompanyName: "Acme",
	})
	s.Require().NoError(err)
	s.NotEmpty(token)
	s.Equal(models.RoleCorporate, user.Role)
	s.Equal("owner@acme.test", user.Email)
	s.Require().Len(user.Teams, 1)
	s.Equal("Acme", user.Teams[0].Name)

	team, err := s.teams.GetTeam(user.Teams[0].ID)
	s.Require().NoError(err)
	s.True(team.IsLeader(user.ID))

	id, err := s.auth.Authenticate(token)
	s.Require().NoError(err)
	s.Equal(user.ID, id)
}

func (s *ServiceTestSuite) TestRegisterValidation() {
	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"blank username", RegisterInput{Username: " ", Email: "a@b.c", Password: "secret1"}, ErrUsernameRequired},
		{"bad email", RegisterInput{Username: "a", Email: "nope", Password: "secret1"}, ErrInvalidEmail},
		{"short password", RegisterInput{Username: "a", Email: "a@b.c", Password: "123"}, ErrPasswordTooShort},
		{"admin role", RegisterInput{Username: "a", Email: "a@b.c", Password: "secret1", Role: models.RoleAdmin}, ErrInvalidRole},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, _, err := s.auth.Register(tc.input)
			s.ErrorIs(err, tc.want)
		})
	}

	_, _, err := s.auth.Register(RegisterInput{Username: "dup", Email: "dup@example.com", Password: "secret1"})
	s.Require().NoError(err)
	_, _, err = s.auth.Register(RegisterInput{Username: "dup", Email: "other@example.com", Password: "secret1"})
	s.ErrorIs(err, ErrUsernameTaken)
}

func (s *ServiceTestSuite) TestLogin() {
	_, _, err := s.auth.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	s.Require().NoError(err)

	user, token, err := s.auth.Login(LoginInput{Identifier: "alice@example.com", Password: "secret1"})
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
	s.NotEmpty(token)

	_, _, err = s.auth.Login(LoginInput{Identifier: "alice", Password: "wrong"})
	s.ErrorIs(err, ErrInvalidCredentials)

	_, _, err = s.auth.Login(LoginInput{Identifier: "nobody", Password: "secret1"})
	s.ErrorIs(err, ErrInvalidCredentials)
}

// staleExistsRepo misses rows committed by a concurrent signup.
type staleExistsRepo struct {
	repository.UserRepository
}

func (staleExistsRepo) ExistsByUsernameOrEmail(string, string, uint64) (bool, error) {
	return false, nil
}

func (s *ServiceTestSuite) TestRegisterRaceReportsTaken() {
	_, _, err := s.auth.Register(RegisterInput{Username: "carol", Email: "carol@example.com", Password: "secret1"})
	s.Require().NoError(err)

	racing := NewAuthService(staleExistsRepo{s.users}, "test-secret", time.Hour)
	_, _, err = racing.Register(RegisterInput{Username: "carol", Email: "carol2@example.com", Password: "secret1"})
	s.ErrorIs(err, ErrUsernameTaken)

	_, _, err = racing.Register(RegisterInput{
		Username:    "carol",
		Email:       "carol3@example.com",
		Password:    "secret1",
		Role:        models.RoleCorporate,
		CompanyName: "Carol Inc",
	})
	s.ErrorIs(err, ErrUsernameTaken)
}

func (s *ServiceTestSuite) TestAuthenticateRejectsDeletedUser() {
	user, token, err := s.auth.Register(RegisterInput{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	s.Require().NoError(err)

	_, err = s.auth.Authenticate(token)
	s.Require().NoError(err)

	s.Require().NoError(s.db.Unscoped().Delete(&models.User{}, user.ID).Error)
	_, err = s.auth.Authenticate(token)
	s.ErrorIs(err, ErrUserNotFound)

	_, err = s.auth.Authenticate("not-a-token")
	s.Error(err)
}

func (s *ServiceTestSuite) TestUpdateProfile() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")

	name := "alice2"
	updated, err := s.userService.UpdateProfile(alice.ID, alice.ID, UpdateProfileInput{Username: &name})
	s.Require().NoError(err)
	s.Equal("alice2", updated.Username)

	_, err = s.userService.UpdateProfile(bob.ID, alice.ID, UpdateProfileInput{Username: &name})
	s.ErrorIs(err, ErrNotProfileOwner)

	role := models.RoleAdmin
	_, err = s.userService.UpdateProfile(alice.ID, alice.ID, UpdateProfileInput{Role: &role})
	s.ErrorIs(err, ErrRoleImmutable)

	taken := "bob"
	_, err = s.userService.UpdateProfile(alice.ID, alice.ID, UpdateProfileInput{Username: &taken})
	s.ErrorIs(err, ErrUsernameTaken)
}

func (s *ServiceTestSuite) TestCreateTeamNotifiesMembers() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")

	team, err := s.teams.CreateTeam(CreateTeamInput{Name: "Core", MemberIDs: []uint64{bob.ID, bob.ID}, CreatorID: alice.ID})
	s.Require().NoError(err)
	s.True(team.IsLeader(alice.ID))
	s.ElementsMatch([]uint64{alice.ID, bob.ID}, team.MemberIDs())

	s.EqualValues(1, s.notificationsFor(alice.ID, models.NotificationTeamCreated))
	s.EqualValues(1, s.notificationsFor(bob.ID, models.NotificationTeamInvitation))

	_, err = s.teams.CreateTeam(CreateTeamInput{Name: "Ghosts", MemberIDs: []uint64{999}, CreatorID: alice.ID})
	s.ErrorIs(err, ErrInvalidTeamMember)
}

func (s *ServiceTestSuite) TestUpdateTeamLeaderOnly() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")
	carol := testutil.CreateUser(s.T(), s.db, "carol")
	team := testutil.CreateTeam(s.T(), s.db, "Core", alice, bob)

	members := []uint64{alice.ID, carol.ID}
	_, err := s.teams.UpdateTeam(team.ID, bob.ID, UpdateTeamInput{MemberIDs: &members})
	s.ErrorIs(err, ErrNotTeamLeader)

	updated, err := s.teams.UpdateTeam(team.ID, alice.ID, UpdateTeamInput{MemberIDs: &members})
	s.Require().NoError(err)
	s.ElementsMatch(members, updated.MemberIDs())
	s.EqualValues(1, s.notificationsFor(carol.ID, models.NotificationTeamMemberAdded))
	s.EqualValues(1, s.notificationsFor(bob.ID, models.NotificationTeamMemberRemoved))

	withoutLeader := []uint64{carol.ID}
	_, err = s.teams.UpdateTeam(team.ID, alice.ID, UpdateTeamInput{MemberIDs: &withoutLeader})
	s.ErrorIs(err, ErrLeaderNotMember)
}

func (s *ServiceTestSuite) TestDeleteTeam() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")
	team := testutil.CreateTeam(s.T(), s.db, "Core", alice, bob)

	s.ErrorIs(s.teams.DeleteTeam(team.ID, bob.ID), ErrNotTeamLeader)
	s.Require().NoError(s.teams.DeleteTeam(team.ID, alice.ID))
	s.EqualValues(1, s.notificationsFor(bob.ID, models.NotificationTeamDeleted))
	s.Zero(s.notificationsFor(alice.ID, models.NotificationTeamDeleted))

	_, err := s.teams.GetTeam(team.ID)
	s.ErrorIs(err, ErrTeamNotFound)
}

func (s *ServiceTestSuite) TestCreateTaskWithWorkPackages() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")
	team := testutil.CreateTeam(s.T(), s.db, "Core", alice, bob)

	task, err := s.tasks.CreateTask(CreateTaskInput{
		Title:    "Launch",
		Progress: 10,
		TeamID:   &team.ID,
		OwnerID:  alice.ID,
		WorkPackages: []WorkPackageFields{
			{Name: "Design", Percentage: 40},
			{Name: "Build", Percentage: 80},
		},
	})
	s.Require().NoError(err)
	s.Equal(models.TaskStatusPending, task.Status)
	s.Len(task.WorkPackages, 2)
	s.Require().NotNil(task.Owner)
	s.Equal(alice.ID, task.Owner.ID)

	s.EqualValues(1, s.notificationsFor(alice.ID, models.NotificationTaskCreated))
	s.EqualValues(1, s.notificationsFor(bob.ID, models.NotificationTaskCreated))
}

func (s *ServiceTestSuite) TestCreateTaskValidation() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	missing := uint64(42)

	cases := []struct {
		name  string
		input CreateTaskInput
		want  error
	}{
		{"no title", CreateTaskInput{OwnerID: alice.ID}, ErrTitleRequired},
		{"progress too high", CreateTaskInput{Title: "x", Progress: 101, OwnerID: alice.ID}, ErrInvalidProgress},
		{"bad status", CreateTaskInput{Title: "x", Status: "done", OwnerID: alice.ID}, ErrInvalidStatus},
		{"missing team", CreateTaskInput{Title: "x", TeamID: &missing, OwnerID: alice.ID}, ErrTaskTeamNotFound},
		{"unnamed work package", CreateTaskInput{Title: "x", OwnerID: alice.ID, WorkPackages: []WorkPackageFields{{}}}, ErrWorkPackageNameRequired},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.tasks.CreateTask(tc.input)
			s.ErrorIs(err, tc.want)
		})
	}

	var count int64
	s.db.Model(&models.ProjectTask{}).Count(&count)
	s.Zero(count)
}

func (s *ServiceTestSuite) TestUpdateAndDeleteTaskOwnerOnly() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")
	task := testutil.CreateTask(s.T(), s.db, "Launch", alice, nil)

	progress := 55
	_, err := s.tasks.UpdateTask(task.ID, bob.ID, UpdateTaskInput{Progress: &progress})
	s.ErrorIs(err, ErrNotTaskOwner)

	status := models.TaskStatusCompleted
	updated, err := s.tasks.UpdateTask(task.ID, alice.ID, UpdateTaskInput{Progress: &progress, Status: &status})
	s.Require().NoError(err)
	s.Equal(55, updated.Progress)
	s.Equal(models.TaskStatusCompleted, updated.Status)
	s.EqualValues(1, s.notificationsFor(alice.ID, models.NotificationTaskUpdated))

	s.ErrorIs(s.tasks.DeleteTask(task.ID, bob.ID), ErrNotTaskOwner)
	s.Require().NoError(s.tasks.DeleteTask(task.ID, alice.ID))
	_, err = s.tasks.GetTask(task.ID)
	s.ErrorIs(err, ErrTaskNotFound)
}

// brokenTeamRepo fails every team lookup.
type brokenTeamRepo struct {
	repository.TeamRepository
}

func (brokenTeamRepo) FindByID(uint64, ...string) (*models.Team, error) {
	return nil, errors.New("connection reset")
}

func (s *ServiceTestSuite) TestDeleteTaskTeamLookupError() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	team := testutil.CreateTeam(s.T(), s.db, "Core", alice)
	task := testutil.CreateTask(s.T(), s.db, "Launch", alice, team)

	tasks := NewTaskService(s.taskRepo, brokenTeamRepo{}, nil)
	err := tasks.DeleteTask(task.ID, alice.ID)
	s.Require().Error(err)
	s.Contains(err.Error(), "connection reset")

	_, err = s.tasks.GetTask(task.ID)
	s.NoError(err)
	s.Zero(s.notificationsFor(alice.ID, models.NotificationTaskDeleted))
}

func (s *ServiceTestSuite) TestListTasksQueryError() {
	_, _, err := s.tasks.ListTasks(utils.ListQuery{
		Filters:    []utils.Filter{{Path: []string{"nope"}, Operator: utils.OpEq, Values: []string{"1"}}},
		Pagination: utils.NewPaginationParams("", ""),
	})
	var qerr *repository.QueryError
	s.ErrorAs(err, &qerr)
}

func (s *ServiceTestSuite) TestWorkPackagesRequireTaskOwner() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")
	task := testutil.CreateTask(s.T(), s.db, "Launch", alice, nil)

	_, err := s.workPackages.CreateWorkPackage(bob.ID, task.ID, WorkPackageFields{Name: "Design"})
	s.ErrorIs(err, ErrNotTaskOwner)

	wp, err := s.workPackages.CreateWorkPackage(alice.ID, task.ID, WorkPackageFields{Name: "Design", Percentage: 25})
	s.Require().NoError(err)
	s.Require().NotNil(wp.ProjectTask)
	s.Equal(task.ID, wp.ProjectTask.ID)

	pct := 150
	_, err = s.workPackages.UpdateWorkPackage(wp.ID, alice.ID, UpdateWorkPackageInput{Percentage: &pct})
	s.ErrorIs(err, ErrInvalidPercentage)

	s.ErrorIs(s.workPackages.DeleteWorkPackage(wp.ID, bob.ID), ErrNotTaskOwner)
	s.Require().NoError(s.workPackages.DeleteWorkPackage(wp.ID, alice.ID))

	_, err = s.workPackages.CreateWorkPackage(alice.ID, 999, WorkPackageFields{Name: "x"})
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *ServiceTestSuite) TestNotificationsScopedToRecipient() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")

	n, err := s.notifications.CreateNotification(CreateNotificationInput{
		Title: "Hello", Type: models.NotificationTaskCreated, UserID: alice.ID,
	})
	s.Require().NoError(err)
	s.False(n.Read)

	_, err = s.notifications.GetNotification(n.ID, bob.ID)
	s.ErrorIs(err, ErrNotRecipient)
	_, err = s.notifications.SetRead(n.ID, bob.ID, true)
	s.ErrorIs(err, ErrNotRecipient)
	s.ErrorIs(s.notifications.DeleteNotification(n.ID, bob.ID), ErrNotRecipient)

	read, err := s.notifications.SetRead(n.ID, alice.ID, true)
	s.Require().NoError(err)
	s.True(read.Read)

	_, err = s.notifications.CreateNotification(CreateNotificationInput{Title: "x", Type: "bogus", UserID: alice.ID})
	s.ErrorIs(err, ErrInvalidNotification)
	_, err = s.notifications.CreateNotification(CreateNotificationInput{Title: "x", Type: models.NotificationTaskCreated, UserID: 999})
	s.ErrorIs(err, ErrRecipientNotFound)

	s.Require().NoError(s.notifications.DeleteNotification(n.ID, alice.ID))
	_, err = s.notifications.GetNotification(n.ID, alice.ID)
	s.ErrorIs(err, ErrNotificationNotFound)
}

func (s *ServiceTestSuite) TestSuggestWorkPackages() {
	_, err := s.tasks.SuggestWorkPackages(context.Background(), SuggestionInput{Title: "x"})
	s.ErrorIs(err, ErrAIServiceNotConfigured)

	deadline := time.Now().Add(48 * time.Hour)
	late := deadline.Add(24 * time.Hour)
	past := time.Now().Add(-72 * time.Hour)
	s.tasks.suggester = stubSuggester{packages: []SuggestedWorkPackage{
		{Name: "  Design ", Percentage: 30, Deadline: &late},
		{Name: "", Percentage: 10},
		{Name: "Ship", Percentage: 400, Deadline: &past},
	}}

	got, err := s.tasks.SuggestWorkPackages(context.Background(), SuggestionInput{Title: "Launch", Deadline: &deadline})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("Design", got[0].Name)
	s.Equal(deadline, *got[0].Deadline)
	s.Equal(0, got[1].Percentage)
	s.Nil(got[1].Deadline)

	s.tasks.suggester = stubSuggester{err: errors.New("boom")}
	_, err = s.tasks.SuggestWorkPackages(context.Background(), SuggestionInput{Title: "Launch"})
	s.Error(err)

	s.tasks.suggester = stubSuggester{}
	_, err = s.tasks.SuggestWorkPackages(context.Background(), SuggestionInput{Title: "Launch"})
	s.ErrorIs(err, ErrAINoSuggestions)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func TestParseSuggestions(t *testing.T) {
	got, err := parseSuggestions("```json\n[{\"name\":\"Design\",\"percentage\":40,\"deadline\":null}]\n```")
	if err != nil {
		t.Fatalf("parseSuggestions: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Design" || got[0].Percentage != 40 || got[0].Deadline != nil {
		t.Fatalf("unexpected suggestions: %+v", got)
	}

	if _, err := parseSuggestions("not json"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFanOutSkipsDuplicatesAndZero(t *testing.T) {
	got := fanOut(models.NotificationTaskCreated, "t", "m", 3, 0, 3, 4)
	if len(got) != 2 || got[0].UserID != 3 || got[1].UserID != 4 {
		t.Fatalf("unexpected fan out: %+v", got)
	}
}
