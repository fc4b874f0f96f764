package store

import (
	"context"
	"strings"

	"github.com/yukikurage/teamtask/internal/client"
	"github.com/yukikurage/teamtask/internal/logger"
	"go.uber.org/zap"
)

// TeamInput creates a team. The caller becomes its leader on the server.
type TeamInput struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description,omitempty"`
	Members     []uint64 `json:"members,omitempty"`
}

// TeamUpdate changes the set fields of a team. Members replaces the whole set.
type TeamUpdate struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string   `json:"description,omitempty"`
	Members     *[]uint64 `json:"members,omitempty"`
	LeaderID    *uint64   `json:"leader,omitempty"`
}

// TeamSlice caches the user's teams.
type TeamSlice struct {
	*collection[client.Team]

	api     *client.Client
	log     *zap.Logger
	current *client.Team
}

func NewTeamSlice(api *client.Client, log *zap.Logger) *TeamSlice {
	return &TeamSlice{
		collection: newCollection(func(t client.Team) uint64 { return t.ID }),
		api:        api,
		log:        logger.OrNop(log).Named("teams"),
	}
}

func (s *TeamSlice) Teams() []client.Team { return s.snapshot() }
func (s *TeamSlice) Loading() bool        { return s.loading() }
func (s *TeamSlice) Error() string        { return s.lastError() }
func (s *TeamSlice) ClearError()          { s.clearError() }

func (s *TeamSlice) Current() *client.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	t := *s.current
	return &t
}

func (s *TeamSlice) SetCurrent(team *client.Team) {
	s.mu.Lock()
	s.current = team
	s.mu.Unlock()
	s.notify()
}

// Fetch replaces the list with the teams the caller belongs to.
func (s *TeamSlice) Fetch(ctx context.Context, memberID uint64) error {
	q := client.NewQuery().Populate("members", "leader", "tasks").Sort("createdAt:desc")
	if memberID != 0 {
		q.Filter("members.id", "$eq", memberID)
	}

	seq := s.beginFetch()
	var resp client.Envelope[[]client.Team]
	err := s.api.Get(ctx, client.PathTeams, &resp, client.WithQuery(q))
	if !s.endFetch(seq, resp.Data, resp.Meta, err, nil) && err == nil {
		s.log.Debug("discarded stale team fetch", zap.Uint64("seq", seq))
	}
	return err
}

func (s *TeamSlice) Create(ctx context.Context, in TeamInput) (*client.Team, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := client.ValidateInput(in); err != nil {
		return nil, s.reject(err)
	}

	s.begin()
	var resp client.Envelope[client.Team]
	err := s.api.Post(ctx, client.PathTeams, client.Payload[TeamInput]{Data: in}, &resp)
	s.end(err, func() { s.prepend(resp.Data) })
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (s *TeamSlice) Update(ctx context.Context, id uint64, in TeamUpdate) (*client.Team, error) {
	if err := client.ValidateInput(in); err != nil {
		return nil, s.reject(err)
	}

	s.begin()
	var resp client.Envelope[client.Team]
	err := s.api.Put(ctx, client.Item(client.PathTeams, id), client.Payload[TeamUpdate]{Data: in}, &resp)
	s.end(err, func() {
		s.replace(resp.Data)
		if s.current != nil && s.current.ID == resp.Data.ID {
			team := resp.Data
			s.current = &team
		}
	})
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (s *TeamSlice) Delete(ctx context.Context, id uint64) error {
	s.begin()
	err := s.api.Delete(ctx, client.Item(client.PathTeams, id), nil, nil)
	s.end(err, func() {
		s.remove(id)
		if s.current != nil && s.current.ID == id {
			s.current = nil
		}
	})
	return err
}

// AddMember sends the cached member list plus userID.
func (s *TeamSlice) AddMember(ctx context.Context, teamID, userID uint64) (*client.Team, error) {
	members, err := s.members(teamID)
	if err != nil {
		return nil, err
	}
	for _, id := range members {
		if id == userID {
			return nil, s.reject(client.Validation("user is already a member"))
		}
	}
	members = append(members, userID)
	return s.Update(ctx, teamID, TeamUpdate{Members: &members})
}

// RemoveMember sends the cached member list without userID.
func (s *TeamSlice) RemoveMember(ctx context.Context, teamID, userID uint64) (*client.Team, error) {
	members, err := s.members(teamID)
	if err != nil {
		return nil, err
	}
	kept := make([]uint64, 0, len(members))
	for _, id := range members {
		if id != userID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(members) {
		return nil, s.reject(client.Validation("user is not a member"))
	}
	return s.Update(ctx, teamID, TeamUpdate{Members: &kept})
}

func (s *TeamSlice) Reset() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.reset()
}

func (s *TeamSlice) members(teamID uint64) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.find(teamID); i >= 0 {
		return s.items[i].MemberIDs(), nil
	}
	if s.current != nil && s.current.ID == teamID {
		return s.current.MemberIDs(), nil
	}
	return nil, client.Validation("team %d is not loaded", teamID)
}
