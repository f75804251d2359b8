package game

import (
	"cmp"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// VoteSnapshot 是投票提交后的回执
type VoteSnapshot struct {
	VoterID  string `json:"voter_id"`
	TargetID string `json:"target_id,omitempty"`
	Abstain  bool   `json:"abstain"`
	Recorded int    `json:"recorded"`
	Eligible int    `json:"eligible"`
}

func isAbstain(targetID string) bool {
	t := strings.TrimSpace(targetID)
	return t == "" || strings.EqualFold(t, abstainSentinel)
}

func (gs *GameState) isEligibleVoter(id string) bool {
	p, ok := gs.player(id)
	return ok && p.Alive && !p.IsNarrator && !gs.Silenced[id]
}

// SubmitVote 记录一张选票，投票开放期间允许改票
func (e *Engine) SubmitVote(gs *GameState, actorID, targetID string) (VoteSnapshot, error) {
	if gs.GameOver || gs.Phase != PhaseDay || gs.DayStep != DayStepVoting || !gs.Vote.Open || gs.Vote.Resolved {
		return VoteSnapshot{}, ErrVotingClosed
	}

	if !gs.isEligibleVoter(actorID) {
		return VoteSnapshot{}, ErrNotEligibleVoter
	}

	abstain := isAbstain(targetID)
	if !abstain && !gs.isTargetable(targetID) {
		return VoteSnapshot{}, ErrInvalidTarget.Errorf("cannot vote for %q", targetID)
	}

	ballot := ""
	if !abstain {
		ballot = targetID
	}
	gs.Vote.Votes[actorID] = ballot

	eligible := gs.eligibleVoters()

	zap.L().Debug(
		"记录投票",
		zap.Int("round", gs.Round),
		zap.String("voter_id", actorID),
		zap.Bool("abstain", abstain),
	)

	return VoteSnapshot{
		VoterID:  actorID,
		TargetID: ballot,
		Abstain:  abstain,
		Recorded: countRecorded(gs, eligible),
		Eligible: len(eligible),
	}, nil
}

func countRecorded(gs *GameState, eligible []*Player) int {
	n := 0
	for _, p := range eligible {
		if _, ok := gs.Vote.Votes[p.ID]; ok {
			n++
		}
	}
	return n
}

// Tally 计算加权票数，不修改状态
func (gs *GameState) Tally() (VoteResult, error) {
	eligible := gs.eligibleVoters()
	if missing := len(eligible) - countRecorded(gs, eligible); missing > 0 {
		return VoteResult{}, ErrIncompleteVote.Errorf("%d eligible voter(s) have not voted", missing)
	}

	weights := make(map[string]int)
	abstainWeight := 0

	for _, voter := range eligible {
		weight := 1
		if voter.Role != nil && voter.Role.VoteWeight > 0 {
			weight = voter.Role.VoteWeight
		}

		target := gs.Vote.Votes[voter.ID]
		if target == "" || !gs.isTargetable(target) {
			abstainWeight += weight
			continue
		}
		weights[target] += weight
	}

	tally := make([]TallyEntry, 0, len(weights))
	for id, w := range weights {
		tally = append(tally, TallyEntry{TargetID: id, Weight: w})
	}
	slices.SortFunc(tally, func(a, b TallyEntry) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		return cmp.Compare(a.TargetID, b.TargetID)
	})

	result := VoteResult{
		Tally:         tally,
		AbstainWeight: abstainWeight,
	}

	switch {
	case len(tally) == 0:
		result.Outcome = VoteOutcomeNoCandidates
	case len(tally) > 1 && tally[0].Weight == tally[1].Weight:
		result.Outcome = VoteOutcomeTie
	case abstainWeight >= tally[0].Weight:
		result.Outcome = VoteOutcomeAbstained
	default:
		result.Outcome = VoteOutcomeEliminated
		result.EliminatedID = tally[0].TargetID
	}

	return result, nil
}

// resolveVote 结算当天投票；选票不全时不做任何修改
func (e *Engine) resolveVote(gs *GameState) (*VoteResult, error) {
	result, err := gs.Tally()
	if err != nil {
		return nil, err
	}

	gs.Vote.Open = false
	gs.Vote.Resolved = true
	gs.Vote.Result = &result

	if result.EliminatedID != "" {
		gs.Players[result.EliminatedID].Alive = false
		e.emit(gs, PlayerEliminated{Round: gs.Round, PlayerID: result.EliminatedID, Cause: CauseVote})
	}

	e.emit(gs, VoteResolved{
		Round:         gs.Round,
		EliminatedID:  result.EliminatedID,
		Tally:         result.Tally,
		AbstainWeight: result.AbstainWeight,
		Outcome:       result.Outcome,
	})

	zap.L().Debug(
		"投票结算完成",
		zap.Int("round", gs.Round),
		zap.String("eliminated_id", result.EliminatedID),
		zap.String("outcome", result.Outcome),
	)

	return &result, nil
}
