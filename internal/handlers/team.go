package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtask/internal/dto"
	apierrors "github.com/yukikurage/teamtask/internal/errors"
	"github.com/yukikurage/teamtask/internal/services"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// ListTeams returns teams with members and leader
func (h *TeamHandler) ListTeams(c *gin.Context) {
	q := listQuery(c)
	teams, total, err := h.teamService.ListTeams(q)
	if err != nil {
		respondTeamError(c, err)
		return
	}
	respondList(c, teams, q, total)
}

func (h *TeamHandler) GetTeam(c *gin.Context) {
	id, ok := entityID(c)
	if !ok {
		return
	}
	team, err := h.teamService.GetTeam(id, populate(c)...)
	if err != nil {
		respondTeamError(c, err)
		return
	}
	respondData(c, http.StatusOK, team)
}

// CreateTeam creates a team led by the caller
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	data, ok := bindPayload[dto.TeamData](c)
	if !ok {
		return
	}

	team, err := h.teamService.CreateTeam(services.CreateTeamInput{
		Name:        data.Name.Value,
		Description: data.Description.Value,
		MemberIDs:   data.Members.IDs,
		CreatorID:   userID,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}
	respondData(c, http.StatusCreated, team)
}

// UpdateTeam updates a team the caller leads. A members list replaces the set.
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := entityID(c)
	if !ok {
		return
	}
	data, ok := bindPayload[dto.TeamData](c)
	if !ok {
		return
	}

	input := services.UpdateTeamInput{
		Name:        data.Name.Ptr(),
		Description: data.Description.Ptr(),
	}
	if data.Members.Set {
		members := data.Members.IDs
		input.MemberIDs = &members
	}
	if data.Leader.Set {
		if data.Leader.ID == nil {
			apierrors.BadRequest(c, "a team must have a leader")
			return
		}
		input.LeaderID = data.Leader.ID
	}

	team, err := h.teamService.UpdateTeam(id, userID, input)
	if err != nil {
		respondTeamError(c, err)
		return
	}
	respondData(c, http.StatusOK, team)
}

func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := entityID(c)
	if !ok {
		return
	}

	if err := h.teamService.DeleteTeam(id, userID); err != nil {
		respondTeamError(c, err)
		return
	}
	respondData(c, http.StatusOK, nil)
}

func respondTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTeamNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTeamLeader):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrInvalidTeamMember),
		errors.Is(err, services.ErrLeaderNotMember):
		apierrors.BadRequest(c, err.Error())
	default:
		respondCommonError(c, err)
	}
}
