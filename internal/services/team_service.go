package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/teamtask/internal/models"
	"github.com/yukikurage/teamtask/internal/repository"
	"github.com/yukikurage/teamtask/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamNameRequired  = errors.New("team name is required")
	ErrNotTeamLeader     = errors.New("only the team leader can perform this action")
	ErrInvalidTeamMember = errors.New("one or more members do not exist")
	ErrLeaderNotMember   = errors.New("the team leader must be a member of the team")
)

// TeamService handles team business logic
type TeamService struct {
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
}

// NewTeamService creates a new TeamService
func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
	}
}

// CreateTeamInput represents input for creating a team. The creator leads it.
type CreateTeamInput struct {
	Name        string
	Description string
	MemberIDs   []uint64
	CreatorID   uint64
}

// UpdateTeamInput represents input for updating a team. Nil means unchanged.
type UpdateTeamInput struct {
	Name        *string
	Description *string
	MemberIDs   *[]uint64
	LeaderID    *uint64
}

// ListTeams returns teams matching q
func (s *TeamService) ListTeams(q utils.ListQuery) ([]models.Team, int64, error) {
	teams, total, err := s.teamRepo.List(q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, total, nil
}

// GetTeam returns a team with members and leader
func (s *TeamService) GetTeam(id uint64, populate ...string) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(id, populate...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

// CreateTeam creates a team led by the creator and invites the other members
func (s *TeamService) CreateTeam(input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	memberIDs := uniqueUint64(append([]uint64{input.CreatorID}, input.MemberIDs...))
	if err := s.ensureUsersExist(memberIDs); err != nil {
		return nil, err
	}

	team := &models.Team{
		Name:        name,
		Description: input.Description,
		LeaderID:    &input.CreatorID,
	}

	notifications := fanOut(models.NotificationTeamCreated,
		"Team created", fmt.Sprintf("Team %q was created", name), input.CreatorID)
	notifications = append(notifications, fanOut(models.NotificationTeamInvitation,
		"Team invitation", fmt.Sprintf("You were added to team %q", name),
		without(memberIDs, input.CreatorID)...)...)

	if err := s.teamRepo.Create(team, memberIDs, notifications); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return s.GetTeam(team.ID)
}

// UpdateTeam updates a team when the actor leads it
func (s *TeamService) UpdateTeam(teamID, actorID uint64, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.GetTeam(teamID)
	if err != nil {
		return nil, err
	}
	if !team.IsLeader(actorID) {
		return nil, ErrNotTeamLeader
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}
	if input.Description != nil {
		team.Description = *input.Description
	}
	if input.LeaderID != nil {
		team.LeaderID = input.LeaderID
	}

	current := team.MemberIDs()
	next := current
	if input.MemberIDs != nil {
		next = uniqueUint64(*input.MemberIDs)
		if err := s.ensureUsersExist(next); err != nil {
			return nil, err
		}
	}
	if !contains(next, *team.LeaderID) {
		return nil, ErrLeaderNotMember
	}

	var notifications []models.Notification
	var memberIDs []uint64
	if input.MemberIDs != nil {
		memberIDs = next
		added := without(next, current...)
		removed := without(current, next...)
		notifications = append(notifications, fanOut(models.NotificationTeamMemberAdded,
			"Added to team", fmt.Sprintf("You were added to team %q", team.Name), added...)...)
		notifications = append(notifications, fanOut(models.NotificationTeamMemberRemoved,
			"Removed from team", fmt.Sprintf("You were removed from team %q", team.Name), removed...)...)
	}

	// Relations are reloaded after the write.
	team.Leader = nil
	team.Members = nil
	if err := s.teamRepo.Update(team, memberIDs, notifications); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	return s.GetTeam(team.ID)
}

// DeleteTeam deletes a team when the actor leads it and tells the other members
func (s *TeamService) DeleteTeam(teamID, actorID uint64) error {
	team, err := s.GetTeam(teamID)
	if err != nil {
		return err
	}
	if !team.IsLeader(actorID) {
		return ErrNotTeamLeader
	}

	notifications := fanOut(models.NotificationTeamDeleted,
		"Team deleted", fmt.Sprintf("Team %q was deleted", team.Name),
		without(team.MemberIDs(), actorID)...)

	if err := s.teamRepo.Delete(teamID, notifications); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

func (s *TeamService) ensureUsersExist(ids []uint64) error {
	count, err := s.userRepo.CountByIDs(ids)
	if err != nil {
		return fmt.Errorf("failed to verify users: %w", err)
	}
	if int(count) != len(ids) {
		return ErrInvalidTeamMember
	}
	return nil
}
