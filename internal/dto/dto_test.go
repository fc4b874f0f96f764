package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/teamtask/internal/models"
)

func TestTaskDataDistinguishesAbsentNullAndValue(t *testing.T) {
	var p Payload[TaskData]
	body := `{"data":{"title":"Launch","deadline":null,"team":{"id":"3"},"workPackages":[{"name":"Design","percentage":40,"deadline":"2025-01-31"}]}}`
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	d := p.Data
	assert.Equal(t, "Launch", *d.Title.Ptr())
	assert.False(t, d.Description.Set)
	assert.True(t, d.Deadline.Cleared())
	assert.Nil(t, TimePtr(d.Deadline))
	require.NotNil(t, d.Team.ID)
	assert.EqualValues(t, 3, *d.Team.ID)
	require.Len(t, d.WorkPackages, 1)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), *TimePtr(d.WorkPackages[0].Deadline))
	assert.Nil(t, d.Status.Ptr())
}

func TestRelationListAcceptsIDsAndObjects(t *testing.T) {
	var d TeamData
	require.NoError(t, json.Unmarshal([]byte(`{"members":[1,{"id":2},"3"],"leader":null}`), &d))
	assert.Equal(t, []uint64{1, 2, 3}, d.Members.IDs)
	assert.True(t, d.Leader.Set)
	assert.Nil(t, d.Leader.ID)

	var missing TeamData
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x"}`), &missing))
	assert.False(t, missing.Members.Set)

	assert.Error(t, json.Unmarshal([]byte(`{"members":[0]}`), &d))
	assert.Error(t, json.Unmarshal([]byte(`{"members":[{"name":"x"}]}`), &d))
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var d WorkPackageData
	assert.Error(t, json.Unmarshal([]byte(`{"deadline":"tomorrow"}`), &d))
	assert.Error(t, json.Unmarshal([]byte(`{"deadline":12}`), &d))
}

func TestToUserDTOIncludesTeams(t *testing.T) {
	u := models.User{ID: 1, Username: "alice", Role: models.RoleCorporate, PasswordHash: "secret",
		Teams: []models.Team{{ID: 7, Name: "Acme"}}}
	dto := ToUserDTO(u)
	assert.Equal(t, "alice", dto.Username)
	require.Len(t, dto.Teams, 1)
	assert.Equal(t, "Acme", dto.Teams[0].Name)

	raw, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
}
