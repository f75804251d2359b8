package game

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster(n int) []RosterEntry {
	entries := make([]RosterEntry, n)
	for i := range entries {
		entries[i] = RosterEntry{ID: fmt.Sprintf("p%02d", i), Name: fmt.Sprintf("Player %d", i+1)}
	}
	return entries
}

func TestAssignRolesInvariants(t *testing.T) {
	for n := 3; n <= 20; n++ {
		for seed := uint64(0); seed < 25; seed++ {
			e := newTestEngine(seed)

			assignments, err := e.AssignRoles(roster(n))
			require.NoError(t, err)
			require.Len(t, assignments, n)

			counts := make(map[string]int)
			for _, role := range assignments {
				counts[role.ID]++
			}

			assert.Equal(t, 1, counts["detective"], "n=%d seed=%d", n, seed)
			assert.Equal(t, 1, counts["doctor"], "n=%d seed=%d", n, seed)
			assert.Equal(t, max(1, n/4), counts["mafia"], "n=%d seed=%d", n, seed)
			assert.Zero(t, counts["narrator"])

			for id, c := range counts {
				def, ok := e.Catalog().Role(id)
				require.True(t, ok)
				if def.MaxPerGame > 0 {
					assert.LessOrEqual(t, c, def.MaxPerGame, "role %s n=%d seed=%d", id, n, seed)
				}
			}
		}
	}
}

func TestAssignRolesWithoutSpecials(t *testing.T) {
	e := NewEngine(noSpecialsCatalog(t), testOptions(7)...)

	assignments, err := e.AssignRoles(roster(6))
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, role := range assignments {
		counts[role.ID]++
	}

	assert.Equal(t, map[string]int{"mafia": 1, "detective": 1, "doctor": 1, "civilian": 3}, counts)
}

func TestAssignRolesInsufficientPlayers(t *testing.T) {
	e := newTestEngine(1)

	_, err := e.AssignRoles(roster(2))
	assert.True(t, errors.Is(err, ErrInsufficientPlayers))
}

func TestStartGame(t *testing.T) {
	e := newTestEngine(3)

	gs, err := e.StartGame(roster(7), "p00")
	require.NoError(t, err)

	assert.Equal(t, PhaseSetup, gs.Phase)
	assert.Len(t, gs.Players, 7)
	assert.Equal(t, "p00", gs.HostID)

	narrator, ok := gs.Players[gs.NarratorID]
	require.True(t, ok)
	assert.True(t, narrator.IsNarrator)
	assert.Nil(t, narrator.Role, "narrator holds no gameplay role")

	narrators := 0
	for _, p := range gs.Players {
		assert.True(t, p.Alive)
		if p.IsNarrator {
			narrators++
			continue
		}
		assert.NotNil(t, p.Role, p.ID)
	}
	assert.Equal(t, 1, narrators)

	require.Len(t, gs.Events, 3)
	assert.Equal(t, EventGameStarted, gs.Events[0].Type)
	assert.Equal(t, EventNarratorAssigned, gs.Events[1].Type)
	assert.Equal(t, EventRolesAssigned, gs.Events[2].Type)
	assert.Equal(t, RolesAssigned{Count: 6}, gs.Events[2].Payload)
	assert.Equal(t, fixedNow, gs.Events[0].Timestamp)
}

func TestStartGameRequiresThreePlayersBesidesNarrator(t *testing.T) {
	e := newTestEngine(3)

	_, err := e.StartGame(roster(3), "p00")
	assert.ErrorIs(t, err, ErrInsufficientPlayers)

	_, err = e.StartGame(roster(4), "p00")
	assert.NoError(t, err)
}

func TestStartGameRejectsDuplicateIDs(t *testing.T) {
	e := newTestEngine(3)

	entries := roster(5)
	entries[4].ID = entries[3].ID

	_, err := e.StartGame(entries, "p00")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

type stubCharacters struct{}

func (stubCharacters) AssignCharacters(roles map[string]string, order []string, _ Rand) map[string]Character {
	out := make(map[string]Character, len(roles))
	for id, role := range roles {
		out[id] = Character{Name: "The " + role}
	}
	return out
}

func TestStartGameAssignsCharacters(t *testing.T) {
	e := newTestEngine(5, WithCharacters(stubCharacters{}))

	gs, err := e.StartGame(roster(6), "p00")
	require.NoError(t, err)

	for _, p := range gs.Players {
		if p.IsNarrator {
			assert.Nil(t, p.Character)
			continue
		}
		require.NotNil(t, p.Character)
		assert.Equal(t, "The "+p.Role.ID, p.Character.Name)
	}
}
