package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func villageWithMafia(t *testing.T, e *Engine) *GameState {
	return fixture(t, e, "n",
		seat{"m1", "mafia"},
		seat{"c1", "civilian"},
		seat{"c2", "civilian"},
		seat{"c3", "civilian"},
		seat{"c4", "civilian"},
		seat{"c5", "civilian"},
	)
}

func TestVoteAllAbstainEliminatesNobody(t *testing.T) {
	e := newTestEngine(1)
	gs := fixture(t, e, "n",
		seat{"m1", "mafia"},
		seat{"c1", "civilian"},
		seat{"c2", "civilian"},
		seat{"c3", "civilian"},
		seat{"c4", "civilian"},
	)
	toVoting(t, e, gs, 2)

	castVotes(t, e, gs, map[string]string{
		"m1": "abstain",
		"c1": "",
		"c2": " ABSTAIN ",
		"c3": "Abstain",
		"c4": "abstain",
	})
	require.NoError(t, e.Advance(gs, "n"))

	require.NotNil(t, gs.Vote.Result)
	assert.Equal(t, VoteOutcomeNoCandidates, gs.Vote.Result.Outcome)
	assert.Empty(t, gs.Vote.Result.EliminatedID)
	assert.Equal(t, 5, gs.Vote.Result.AbstainWeight)
	assert.False(t, gs.Vote.Open)
	assert.True(t, gs.Vote.Resolved)
	for _, p := range gs.alivePlayers() {
		assert.True(t, p.Alive)
	}
	assert.Len(t, gs.alivePlayers(), 5)
	assert.Equal(t, EventVoteResolved, gs.lastEventType())
}

func TestVoteTieEliminatesNobody(t *testing.T) {
	e := newTestEngine(1)
	gs := villageWithMafia(t, e)
	toVoting(t, e, gs, 2)

	castVotes(t, e, gs, map[string]string{
		"c1": "m1", "c2": "m1", "c3": "m1",
		"m1": "c1", "c4": "c1", "c5": "c1",
	})
	require.NoError(t, e.Advance(gs, "n"))

	assert.Equal(t, VoteOutcomeTie, gs.Vote.Result.Outcome)
	assert.Empty(t, gs.Vote.Result.EliminatedID)
	assert.Equal(t, []TallyEntry{{TargetID: "c1", Weight: 3}, {TargetID: "m1", Weight: 3}}, gs.Vote.Result.Tally)
	assert.True(t, alive(gs, "m1"))
	assert.True(t, alive(gs, "c1"))
}

func TestVoteAbstentionBlocksElimination(t *testing.T) {
	e := newTestEngine(1)
	gs := villageWithMafia(t, e)
	toVoting(t, e, gs, 2)

	castVotes(t, e, gs, map[string]string{
		"c1": "m1", "c2": "m1",
		"c3": "abstain", "c4": "abstain",
		"m1": "c1", "c5": "c2",
	})
	require.NoError(t, e.Advance(gs, "n"))

	assert.Equal(t, VoteOutcomeAbstained, gs.Vote.Result.Outcome)
	assert.Equal(t, 2, gs.Vote.Result.AbstainWeight)
	assert.True(t, alive(gs, "m1"))
}

func TestVotePluralityEliminatesAndCanEndTheGame(t *testing.T) {
	e := newTestEngine(1)
	gs := villageWithMafia(t, e)
	toVoting(t, e, gs, 2)

	castVotes(t, e, gs, map[string]string{
		"c1": "m1", "c2": "m1", "c3": "m1",
		"c4": "abstain",
		"m1": "c1", "c5": "c1",
	})
	require.NoError(t, e.Advance(gs, "n"))

	assert.Equal(t, VoteOutcomeEliminated, gs.Vote.Result.Outcome)
	assert.Equal(t, "m1", gs.Vote.Result.EliminatedID)
	assert.False(t, alive(gs, "m1"))

	assert.True(t, gs.GameOver)
	assert.Equal(t, PhaseEnded, gs.Phase)
	assert.Equal(t, WinnerTown, gs.Result.Winner)
	assert.Equal(t, ReasonMafiaEliminated, gs.Result.Reason)

	n := len(gs.Events)
	require.GreaterOrEqual(t, n, 3)
	assert.Equal(t, EventPlayerEliminated, gs.Events[n-3].Type)
	assert.Equal(t, EventVoteResolved, gs.Events[n-2].Type)
	assert.Equal(t, EventGameEnded, gs.Events[n-1].Type)
}

func TestVoteWeightCountsForMayor(t *testing.T) {
	e := newTestEngine(1)
	gs := fixture(t, e, "n",
		seat{"may", "mayor"},
		seat{"m1", "mafia"},
		seat{"c1", "civilian"},
		seat{"c2", "civilian"},
		seat{"c3", "civilian"},
	)
	toVoting(t, e, gs, 2)

	castVotes(t, e, gs, map[string]string{
		"may": "c1",
		"c2":  "m1",
		"c3":  "abstain",
		"m1":  "c3",
		"c1":  "m1",
	})

	result, err := gs.Tally()
	require.NoError(t, err)
	assert.Equal(t, []TallyEntry{
		{TargetID: "c1", Weight: 2},
		{TargetID: "m1", Weight: 2},
		{TargetID: "c3", Weight: 1},
	}, result.Tally)
	assert.Equal(t, VoteOutcomeTie, result.Outcome)

	_, err = e.SubmitVote(gs, "c3", "c1")
	require.NoError(t, err)

	result, err = gs.Tally()
	require.NoError(t, err)
	assert.Equal(t, VoteOutcomeEliminated, result.Outcome)
	assert.Equal(t, "c1", result.EliminatedID)
}

func TestIncompleteVoteLeavesStateUntouched(t *testing.T) {
	e := newTestEngine(1)
	gs := villageWithMafia(t, e)
	toVoting(t, e, gs, 2)

	castVotes(t, e, gs, map[string]string{"c1": "m1", "c2": "m1"})

	before := cloneState(gs)
	err := e.Advance(gs, "n")
	assert.ErrorIs(t, err, ErrIncompleteVote)
	assert.Equal(t, before, cloneState(gs))
	assert.True(t, gs.Vote.Open)
}

func TestSilencedPlayerCannotVote(t *testing.T) {
	e := newTestEngine(1)
	gs := villageWithMafia(t, e)
	gs.Silenced["c1"] = true
	toVoting(t, e, gs, 2)

	assert.Equal(t, VoteStarted{Round: 2, Voters: 5}, gs.Events[len(gs.Events)-1].Payload)

	_, err := e.SubmitVote(gs, "c1", "m1")
	assert.ErrorIs(t, err, ErrNotEligibleVoter)

	castVotes(t, e, gs, map[string]string{
		"c2": "m1", "c3": "m1", "c4": "m1",
		"c5": "abstain", "m1": "c2",
	})
	require.NoError(t, e.Advance(gs, "n"))
	assert.Equal(t, "m1", gs.Vote.Result.EliminatedID)
}

func TestSubmitVoteRejections(t *testing.T) {
	e := newTestEngine(1)

	cases := []struct {
		name    string
		prepare func(gs *GameState)
		voter   string
		target  string
		want    *Error
	}{
		{name: "narrator", voter: "n", target: "m1", want: ErrNotEligibleVoter},
		{name: "unknown voter", voter: "ghost", target: "m1", want: ErrNotEligibleVoter},
		{
			name:    "dead voter",
			prepare: func(gs *GameState) { gs.Players["c1"].Alive = false },
			voter:   "c1",
			target:  "m1",
			want:    ErrNotEligibleVoter,
		},
		{name: "narrator target", voter: "c1", target: "n", want: ErrInvalidTarget},
		{name: "unknown target", voter: "c1", target: "ghost", want: ErrInvalidTarget},
		{
			name:    "dead target",
			prepare: func(gs *GameState) { gs.Players["c2"].Alive = false },
			voter:   "c1",
			target:  "c2",
			want:    ErrInvalidTarget,
		},
		{
			name:    "vote already resolved",
			prepare: func(gs *GameState) { gs.Vote.Resolved = true },
			voter:   "c1",
			target:  "m1",
			want:    ErrVotingClosed,
		},
		{
			name:    "not voting step",
			prepare: func(gs *GameState) { gs.DayStep = DayStepDayPrompt },
			voter:   "c1",
			target:  "m1",
			want:    ErrVotingClosed,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gs := villageWithMafia(t, e)
			toVoting(t, e, gs, 2)
			if tc.prepare != nil {
				tc.prepare(gs)
			}
			before := cloneState(gs)

			_, err := e.SubmitVote(gs, tc.voter, tc.target)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, cloneState(gs))
		})
	}
}

func TestRevoteOverwritesBallot(t *testing.T) {
	e := newTestEngine(1)
	gs := villageWithMafia(t, e)
	toVoting(t, e, gs, 2)

	snap, err := e.SubmitVote(gs, "c1", "m1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Recorded)
	assert.Equal(t, 6, snap.Eligible)

	snap, err = e.SubmitVote(gs, "c1", "abstain")
	require.NoError(t, err)
	assert.True(t, snap.Abstain)
	assert.Equal(t, 1, snap.Recorded)
	assert.Equal(t, "", gs.Vote.Votes["c1"])

	snap, err = e.SubmitVote(gs, "c1", "c2")
	require.NoError(t, err)
	assert.Equal(t, "c2", snap.TargetID)
	assert.Equal(t, "c2", gs.Vote.Votes["c1"])
}

func TestDayFlowAfterVote(t *testing.T) {
	e := newTestEngine(1)
	gs := villageWithMafia(t, e)
	toVoting(t, e, gs, 2)

	castVotes(t, e, gs, map[string]string{
		"c1": "c5", "c2": "c5", "c3": "c5",
		"c4": "m1", "c5": "m1", "m1": "c5",
	})
	require.NoError(t, e.Advance(gs, "n"))
	assert.False(t, alive(gs, "c5"))
	assert.False(t, gs.GameOver)
	assert.Equal(t, DayStepVoting, gs.DayStep)

	require.NoError(t, e.Advance(gs, "n"))
	assert.Equal(t, DayStepDayResult, gs.DayStep)

	require.NoError(t, e.Advance(gs, "n"))
	assert.Equal(t, PhaseNight, gs.Phase)
	assert.Equal(t, 3, gs.Round)
	assert.False(t, gs.Vote.Open)
	assert.Empty(t, gs.Vote.Votes)
}
