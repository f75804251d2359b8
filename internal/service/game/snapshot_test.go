package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotUnknownViewer(t *testing.T) {
	e := newTestEngine(1)
	gs := basicTable(t, e)

	_, err := e.Snapshot(gs, "ghost")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestSnapshotHidesRolesFromPlayers(t *testing.T) {
	e := newTestEngine(1)
	gs := basicTable(t, e)
	openFirstStep(t, e, gs, 2)

	vs, err := e.Snapshot(gs, "c1")
	require.NoError(t, err)

	assert.False(t, vs.IsNarrator)
	require.NotNil(t, vs.Me.Role)
	assert.Equal(t, "civilian", vs.Me.Role.ID)
	assert.Nil(t, vs.FullRoster)
	assert.Nil(t, vs.NightQueue)
	assert.Nil(t, vs.Prompt, "players outside the step do not learn whose turn it is")
	assert.Len(t, vs.Players, 7)

	for _, ev := range vs.Events {
		assert.True(t, ev.Payload.Public(), ev.Type)
	}
	assert.Less(t, len(vs.Events), len(gs.Events))
}

func TestSnapshotForActiveActor(t *testing.T) {
	e := newTestEngine(1)
	gs := basicTable(t, e)
	openFirstStep(t, e, gs, 2)

	vs, err := e.Snapshot(gs, "m1")
	require.NoError(t, err)
	require.NotNil(t, vs.Prompt)
	assert.True(t, vs.Prompt.MyTurn)
	assert.False(t, vs.Prompt.Submitted)
	assert.Nil(t, vs.Prompt.ActorIDs)

	_, err = e.SubmitNightAction(gs, "m1", AbilityMafiaKill, "c1")
	require.NoError(t, err)

	vs, err = e.Snapshot(gs, "m1")
	require.NoError(t, err)
	assert.True(t, vs.Prompt.Submitted)
	assert.True(t, vs.Prompt.Done)
}

func TestSnapshotForNarrator(t *testing.T) {
	e := newTestEngine(1)
	gs := basicTable(t, e)
	openFirstStep(t, e, gs, 2)

	vs, err := e.Snapshot(gs, "n")
	require.NoError(t, err)

	assert.True(t, vs.IsNarrator)
	assert.Len(t, vs.FullRoster, 7)
	assert.Len(t, vs.NightQueue, 3)
	require.NotNil(t, vs.Prompt)
	assert.Equal(t, []string{"m1"}, vs.Prompt.ActorIDs)
	assert.False(t, vs.Prompt.MyTurn)
	assert.Len(t, vs.Events, len(gs.Events))
	assert.Equal(t, EventActionRequested, vs.Events[len(vs.Events)-1].Type)
}

func TestSnapshotVoteView(t *testing.T) {
	e := newTestEngine(1)
	gs := basicTable(t, e)
	toVoting(t, e, gs, 2)

	castVotes(t, e, gs, map[string]string{"c1": "m1", "c2": "abstain"})

	vs, err := e.Snapshot(gs, "c1")
	require.NoError(t, err)
	assert.True(t, vs.Vote.Open)
	assert.True(t, vs.Vote.CanVote)
	require.NotNil(t, vs.Vote.MyBallot)
	assert.Equal(t, "m1", *vs.Vote.MyBallot)
	assert.Equal(t, 2, vs.Vote.Recorded)
	assert.Equal(t, 6, vs.Vote.Eligible)
	assert.Nil(t, vs.Vote.Ballots)

	vs, err = e.Snapshot(gs, "c3")
	require.NoError(t, err)
	assert.Nil(t, vs.Vote.MyBallot)

	vs, err = e.Snapshot(gs, "n")
	require.NoError(t, err)
	assert.False(t, vs.Vote.CanVote)
	require.Len(t, vs.Vote.Ballots, 2)
	assert.Nil(t, vs.Vote.Ballots["c2"])
	require.NotNil(t, vs.Vote.Ballots["c1"])
	assert.Equal(t, "m1", *vs.Vote.Ballots["c1"])
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	e := newTestEngine(1)
	gs := basicTable(t, e)
	e.startNight(gs, 2)
	playNight(t, e, gs, map[Ability]map[string]string{
		AbilityMafiaKill:            {"m1": "c1"},
		AbilityProtect:              {"doc": "doc"},
		AbilityInvestigateAlignment: {"det": "m1"},
	})
	before := cloneState(gs)

	vs, err := e.Snapshot(gs, "det")
	require.NoError(t, err)
	require.NotNil(t, vs.Investigation)
	require.Len(t, vs.InvestigationHistory, 1)

	vs.Me.Role.Abilities[0] = AbilityKill
	vs.Me.Alive = false
	vs.LastNightEliminated[0] = "det"
	vs.InvestigationHistory[0].Alignment = AlignmentTown
	vs.Investigation.TargetID = "c2"

	assert.Equal(t, before, cloneState(gs))
}

func TestSnapshotRevealsRosterWhenGameOver(t *testing.T) {
	e := newTestEngine(1)
	gs := villageWithMafia(t, e)
	toVoting(t, e, gs, 2)
	castVotes(t, e, gs, map[string]string{
		"c1": "m1", "c2": "m1", "c3": "m1", "c4": "m1", "c5": "m1", "m1": "c1",
	})
	require.NoError(t, e.Advance(gs, "n"))
	require.True(t, gs.GameOver)

	vs, err := e.Snapshot(gs, "c1")
	require.NoError(t, err)
	assert.True(t, vs.GameOver)
	assert.Len(t, vs.FullRoster, 7)
	require.NotNil(t, vs.Result)
	assert.Equal(t, WinnerTown, vs.Result.Winner)
}

func TestCursorChangesWithProgress(t *testing.T) {
	e := newTestEngine(1)
	gs := basicTable(t, e)

	seen := map[string]bool{gs.Cursor().Key(): true}
	for range 6 {
		require.NoError(t, e.Advance(gs, "n"))
		key := gs.Cursor().Key()
		assert.False(t, seen[key], "cursor %s repeated", key)
		seen[key] = true
	}
}

func TestNightStartedHidesQueueSize(t *testing.T) {
	e := newTestEngine(1)

	powerful := basicTable(t, e)
	plain := fixture(t, e, "n",
		seat{"m1", "mafia"},
		seat{"c1", "civilian"},
		seat{"c2", "civilian"},
		seat{"c3", "civilian"},
	)

	e.startNight(powerful, 2)
	e.startNight(plain, 2)
	require.NotEqual(t, len(powerful.Night.Queue), len(plain.Night.Queue))

	nightStarts := func(gs *GameState) []Payload {
		vs, err := e.Snapshot(gs, "c1")
		require.NoError(t, err)

		var out []Payload
		for _, ev := range vs.Events {
			if ev.Type == EventNightStarted {
				out = append(out, ev.Payload)
			}
		}
		return out
	}

	// 玩家无法从夜晚开始事件推断还有多少能力持有者存活
	assert.Equal(t, []Payload{NightStarted{Round: 2}}, nightStarts(powerful))
	assert.Equal(t, nightStarts(powerful), nightStarts(plain))
}
