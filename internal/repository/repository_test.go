package repository

import (
	"errors"
	"net/url"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/testutil"
	"github.com/yukikurage/teamtask/internal/utils"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type RepositoryTestSuite struct {
	suite.Suite
	db *gorm.DB
}

func (s *RepositoryTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
}

func listQuery(raw string) utils.ListQuery {
	values, _ := url.ParseQuery(raw)
	return utils.ParseListQuery(values)
}

func (s *RepositoryTestSuite) TestCreateWithTeam() {
	repo := NewUserRepository(s.db)
	user := &models.User{Username: "acme-admin", Email: "admin@acme.test", PasswordHash: "x", Role: models.RoleCorporate}
	team := &models.Team{Name: "Acme"}

	s.Require().NoError(repo.CreateWithTeam(user, team))

	loaded, err := NewTeamRepository(s.db).FindByID(team.ID)
	s.Require().NoError(err)
	s.Equal("Acme", loaded.Name)
	s.Require().NotNil(loaded.Leader)
	s.Equal(user.ID, loaded.Leader.ID)
	s.Equal([]uint64{user.ID}, loaded.MemberIDs())
}

func (s *RepositoryTestSuite) TestCreateWithTeamRollsBack() {
	repo := NewUserRepository(s.db)
	testutil.CreateUser(s.T(), s.db, "taken")

	user := &models.User{Username: "taken", Email: "other@example.com", PasswordHash: "x", Role: models.RoleCorporate}
	err := repo.CreateWithTeam(user, &models.Team{Name: "Acme"})
	s.Require().Error(err)
	s.True(errors.Is(err, ErrCreateUser))

	var teams int64
	s.db.Model(&models.Team{}).Count(&teams)
	s.Zero(teams)
}

func (s *RepositoryTestSuite) TestFindByIdentifier() {
	repo := NewUserRepository(s.db)
	user := testutil.CreateUser(s.T(), s.db, "alice")

	byName, err := repo.FindByIdentifier("alice")
	s.Require().NoError(err)
	s.Equal(user.ID, byName.ID)

	byEmail, err := repo.FindByIdentifier("alice@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, byEmail.ID)

	_, err = repo.FindByIdentifier("nobody")
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestExistsByUsernameOrEmail() {
	repo := NewUserRepository(s.db)
	user := testutil.CreateUser(s.T(), s.db, "alice")

	exists, err := repo.ExistsByUsernameOrEmail("alice", "new@example.com", 0)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = repo.ExistsByUsernameOrEmail("alice", "alice@example.com", user.ID)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *RepositoryTestSuite) TestTaskCreateWithWorkPackages() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	repo := NewTaskRepository(s.db)

	task := &models.ProjectTask{Title: "Launch", OwnerID: owner.ID, Status: models.TaskStatusPending}
	packages := []models.WorkPackage{
		{Name: "Design", Percentage: 40, Status: models.TaskStatusPending},
		{Name: "Build", Percentage: 60, Status: models.TaskStatusPending},
	}
	notifications := []models.Notification{{Title: "Task created", Type: models.NotificationTaskCreated, UserID: owner.ID}}

	s.Require().NoError(repo.Create(task, packages, notifications))

	loaded, err := repo.FindByID(task.ID)
	s.Require().NoError(err)
	s.Len(loaded.WorkPackages, 2)
	s.Require().NotNil(loaded.Owner)
	s.Equal(owner.ID, loaded.Owner.ID)

	var count int64
	s.db.Model(&models.Notification{}).Where("user_id = ?", owner.ID).Count(&count)
	s.EqualValues(1, count)
}

func (s *RepositoryTestSuite) TestTaskCreateRollsBackOnNotificationFailure() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	repo := NewTaskRepository(s.db)

	// Drop the table so the final insert of the transaction fails.
	s.Require().NoError(s.db.Migrator().DropTable(&models.Notification{}))

	task := &models.ProjectTask{Title: "Launch", OwnerID: owner.ID}
	err := repo.Create(task,
		[]models.WorkPackage{{Name: "Design"}},
		[]models.Notification{{Title: "x", Type: models.NotificationTaskCreated, UserID: owner.ID}},
	)
	s.Require().Error(err)

	var tasks, packages int64
	s.db.Model(&models.ProjectTask{}).Count(&tasks)
	s.db.Model(&models.WorkPackage{}).Count(&packages)
	s.Zero(tasks)
	s.Zero(packages)
}

func (s *RepositoryTestSuite) TestTaskDeleteCascadesWorkPackages() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	repo := NewTaskRepository(s.db)
	task := &models.ProjectTask{Title: "Launch", OwnerID: owner.ID}
	s.Require().NoError(repo.Create(task, []models.WorkPackage{{Name: "A"}, {Name: "B"}}, nil))

	s.Require().NoError(repo.Delete(task.ID, nil))

	_, err := repo.FindByID(task.ID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)

	var packages int64
	s.db.Model(&models.WorkPackage{}).Where("project_task_id = ?", task.ID).Count(&packages)
	s.Zero(packages)
}

func (s *RepositoryTestSuite) TestTaskListFiltersSortsAndPaginates() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")
	team := testutil.CreateTeam(s.T(), s.db, "Core", alice)

	testutil.CreateTask(s.T(), s.db, "Alpha", alice, team)
	testutil.CreateTask(s.T(), s.db, "Beta", alice, nil)
	testutil.CreateTask(s.T(), s.db, "Gamma", bob, nil)

	repo := NewTaskRepository(s.db)

	tasks, total, err := repo.List(listQuery("filters[owner][id][$eq]=1&sort=title:desc"))
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Require().Len(tasks, 2)
	s.Equal("Beta", tasks[0].Title)
	s.Equal("Alpha", tasks[1].Title)
	s.Require().NotNil(tasks[1].Team)
	s.Equal(team.ID, tasks[1].Team.ID)

	tasks, total, err = repo.List(listQuery("filters[title][$containsi]=A&sort=title:asc&pagination[page]=2&pagination[pageSize]=2"))
	s.Require().NoError(err)
	s.EqualValues(3, total)
	s.Require().Len(tasks, 1)
	s.Equal("Gamma", tasks[0].Title)

	tasks, _, err = repo.List(listQuery("filters[team][id][$null]=true"))
	s.Require().NoError(err)
	s.Len(tasks, 2)
}

func (s *RepositoryTestSuite) TestListRejectsUnknownKeys() {
	repo := NewTaskRepository(s.db)

	var qerr *QueryError
	_, _, err := repo.List(listQuery("filters[password][$eq]=x"))
	s.Require().ErrorAs(err, &qerr)
	s.Contains(qerr.Message, "password")

	_, _, err = repo.List(listQuery("sort=secret:asc"))
	s.Require().ErrorAs(err, &qerr)

	_, _, err = repo.List(listQuery("populate=secrets"))
	s.Require().ErrorAs(err, &qerr)

	_, _, err = repo.List(listQuery("filters[progress][$eq]=high"))
	s.Require().ErrorAs(err, &qerr)
}

func (s *RepositoryTestSuite) TestTeamMembershipFilterAndUpdate() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")
	carol := testutil.CreateUser(s.T(), s.db, "carol")
	team := testutil.CreateTeam(s.T(), s.db, "Core", alice, bob)
	testutil.CreateTeam(s.T(), s.db, "Other", carol)

	repo := NewTeamRepository(s.db)

	teams, total, err := repo.List(listQuery("filters[members][id][$eq]=2"))
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(teams, 1)
	s.Equal("Core", teams[0].Name)

	loaded, err := repo.FindByID(team.ID)
	s.Require().NoError(err)
	loaded.Name = "Core Team"
	notifications := []models.Notification{{Title: "Added", Type: models.NotificationTeamMemberAdded, UserID: carol.ID}}
	s.Require().NoError(repo.Update(loaded, []uint64{alice.ID, carol.ID}, notifications))

	loaded, err = repo.FindByID(team.ID)
	s.Require().NoError(err)
	s.Equal("Core Team", loaded.Name)
	s.ElementsMatch([]uint64{alice.ID, carol.ID}, loaded.MemberIDs())
}

func (s *RepositoryTestSuite) TestTeamDeleteDetachesTasks() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	team := testutil.CreateTeam(s.T(), s.db, "Core", alice)
	task := testutil.CreateTask(s.T(), s.db, "Alpha", alice, team)

	repo := NewTeamRepository(s.db)
	s.Require().NoError(repo.Delete(team.ID, nil))

	exists, err := repo.Exists(team.ID)
	s.Require().NoError(err)
	s.False(exists)

	loaded, err := NewTaskRepository(s.db).FindByID(task.ID)
	s.Require().NoError(err)
	s.Nil(loaded.TeamID)
}

func (s *RepositoryTestSuite) TestNotificationListScopedToRecipient() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")
	testutil.CreateNotification(s.T(), s.db, alice, "one", false)
	testutil.CreateNotification(s.T(), s.db, alice, "two", true)
	testutil.CreateNotification(s.T(), s.db, bob, "three", false)

	repo := NewNotificationRepository(s.db)

	items, total, err := repo.ListForUser(alice.ID, listQuery("filters[read][$eq]=false"))
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(items, 1)
	s.Equal("one", items[0].Title)
	s.Require().NotNil(items[0].User)
	s.Equal(alice.ID, items[0].User.ID)

	// A filter naming another recipient cannot widen the scope.
	items, total, err = repo.ListForUser(alice.ID, listQuery("filters[user][id][$eq]=2"))
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(items)
}

func (s *RepositoryTestSuite) TestWorkPackageCRUD() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	task := testutil.CreateTask(s.T(), s.db, "Alpha", owner, nil)
	repo := NewWorkPackageRepository(s.db)

	wp := &models.WorkPackage{Name: "Design", Percentage: 30, ProjectTaskID: task.ID, Status: models.TaskStatusPending}
	s.Require().NoError(repo.Create(wp))

	loaded, err := repo.FindByID(wp.ID)
	s.Require().NoError(err)
	s.Require().NotNil(loaded.ProjectTask)
	s.Equal(task.ID, loaded.ProjectTask.ID)

	loaded.Status = models.TaskStatusCompleted
	s.Require().NoError(repo.Update(loaded))

	items, total, err := repo.List(listQuery("filters[project_task][id][$eq]=1&filters[status][$eq]=completed"))
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Len(items, 1)

	s.Require().NoError(repo.Delete(wp.ID))
	_, err = repo.FindByID(wp.ID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func TestUserRepository_FindByIDPropagatesDriverError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	driverErr := errors.New("connection reset")
	mock.ExpectQuery("SELECT \\* FROM `users`").WillReturnError(driverErr)

	_, err = NewUserRepository(db).FindByID(7)
	assert.ErrorIs(t, err, driverErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_CreateRollsBackOnWorkPackageError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `project_tasks`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `work_packages`").WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	task := &models.ProjectTask{Title: "Launch", OwnerID: 1}
	err = NewTaskRepository(db).Create(task, []models.WorkPackage{{Name: "Design"}}, nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
