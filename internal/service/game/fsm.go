package game

import (
	"fmt"

	"go.uber.org/zap"
)

// stage 是由 GameState 推导出的显式状态，每个状态对应一个推进处理函数
type stage int

const (
	stageSetupStory stage = iota + 1
	stageSetupDone
	stageNightIntro
	stageDayIntro
	stageNightOpenStep
	stageNightWaiting
	stageNightStepDone
	stageNightResolve
	stageDayNightResult
	stageDayPrompt
	stageDayVoting
	stageDayVoteResolved
	stageDayResult
	stageEnded
)

func (s stage) String() string {
	switch s {
	case stageSetupStory:
		return "setup_story"
	case stageSetupDone:
		return "setup_done"
	case stageNightIntro:
		return "night_intro"
	case stageDayIntro:
		return "day_intro"
	case stageNightOpenStep:
		return "night_open_step"
	case stageNightWaiting:
		return "night_waiting"
	case stageNightStepDone:
		return "night_step_done"
	case stageNightResolve:
		return "night_resolve"
	case stageDayNightResult:
		return "day_night_result"
	case stageDayPrompt:
		return "day_prompt"
	case stageDayVoting:
		return "day_voting"
	case stageDayVoteResolved:
		return "day_vote_resolved"
	case stageDayResult:
		return "day_result"
	case stageEnded:
		return "ended"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

type stageHandler func(e *Engine, gs *GameState) error

var stageHandlers = map[stage]stageHandler{
	stageSetupStory:      (*Engine).advanceStory,
	stageSetupDone:       (*Engine).advanceFirstNight,
	stageNightIntro:      (*Engine).advanceFirstDay,
	stageDayIntro:        (*Engine).advanceSecondNight,
	stageNightOpenStep:   (*Engine).advanceOpenStep,
	stageNightWaiting:    (*Engine).advanceWaiting,
	stageNightStepDone:   (*Engine).advanceCloseStep,
	stageNightResolve:    (*Engine).advanceResolveNight,
	stageDayNightResult:  (*Engine).advanceRevealInfo,
	stageDayPrompt:       (*Engine).advanceOpenVote,
	stageDayVoting:       (*Engine).advanceResolveVote,
	stageDayVoteResolved: (*Engine).advanceDayResult,
	stageDayResult:       (*Engine).advanceNextNight,
}

func (gs *GameState) stage() (stage, error) {
	if gs.GameOver || gs.Phase == PhaseEnded {
		return stageEnded, nil
	}

	switch gs.Phase {
	case PhaseSetup:
		if gs.StoryStep < storyStepSetupDone {
			return stageSetupStory, nil
		}
		return stageSetupDone, nil

	case PhaseNight:
		if gs.Round == firstRound && gs.StoryStep == storyStepNightIntro {
			return stageNightIntro, nil
		}
		if gs.Night == nil {
			return 0, ErrUnknownPhase.Errorf("night round %d has no working state", gs.Round)
		}
		if gs.Night.Prompt != nil {
			if gs.Night.Prompt.Done {
				return stageNightStepDone, nil
			}
			return stageNightWaiting, nil
		}
		if gs.Night.Index >= len(gs.Night.Queue) {
			return stageNightResolve, nil
		}
		return stageNightOpenStep, nil

	case PhaseDay:
		if gs.Round == firstRound && gs.StoryStep == storyStepDayIntro {
			return stageDayIntro, nil
		}
		switch gs.DayStep {
		case DayStepNightResult:
			return stageDayNightResult, nil
		case DayStepDayPrompt:
			return stageDayPrompt, nil
		case DayStepVoting:
			if gs.Vote.Resolved {
				return stageDayVoteResolved, nil
			}
			return stageDayVoting, nil
		case DayStepDayResult:
			return stageDayResult, nil
		}
		return 0, ErrUnknownPhase.Errorf("day step %q is not valid", gs.DayStep)
	}

	return 0, ErrUnknownPhase.Errorf("phase %q is not valid", gs.Phase)
}

// Advance 由主持人推进游戏；失败时状态保持不变
func (e *Engine) Advance(gs *GameState, actorID string) error {
	if gs.NarratorID == "" || actorID != gs.NarratorID {
		return ErrNotNarrator
	}

	st, err := gs.stage()
	if err != nil {
		zap.L().Error(
			"游戏状态不一致",
			zap.String("phase", string(gs.Phase)),
			zap.Int("round", gs.Round),
			zap.Error(err),
		)
		return err
	}

	if st == stageEnded {
		return nil
	}

	handler, ok := stageHandlers[st]
	if !ok {
		return ErrUnknownPhase.Errorf("no handler for stage %s", st)
	}

	if err := handler(e, gs); err != nil {
		zap.L().Debug(
			"推进被拒绝",
			zap.String("stage", st.String()),
			zap.Error(err),
		)
		return err
	}

	zap.L().Debug(
		"推进完成",
		zap.String("from", st.String()),
		zap.String("phase", string(gs.Phase)),
		zap.Int("round", gs.Round),
	)

	return nil
}

func (e *Engine) advanceStory(gs *GameState) error {
	gs.StoryStep++
	e.emit(gs, StoryBeat{Step: gs.StoryStep})
	return nil
}

// 第一夜只做叙事铺垫，不生成行动队列
func (e *Engine) advanceFirstNight(gs *GameState) error {
	gs.Phase = PhaseNight
	gs.Round = firstRound
	gs.StoryStep = storyStepNightIntro
	gs.Vote = Vote{Votes: make(map[string]string)}

	e.emit(gs, RoundStarted{Round: firstRound})
	e.emit(gs, NightStarted{Round: firstRound})
	return nil
}

func (e *Engine) advanceFirstDay(gs *GameState) error {
	e.emit(gs, NightEnded{Round: firstRound})

	gs.Phase = PhaseDay
	gs.StoryStep = storyStepDayIntro
	gs.DayStep = DayStepNightResult

	e.emit(gs, DayStarted{Round: firstRound})
	return nil
}

func (e *Engine) advanceSecondNight(gs *GameState) error {
	e.startNight(gs, secondRound)
	return nil
}

func (e *Engine) advanceOpenStep(gs *GameState) error {
	step := gs.Night.Queue[gs.Night.Index]

	gs.Night.Prompt = &NightPrompt{
		Ability:      step.Ability,
		ActorIDs:     cloneStrings(step.ActorIDs),
		Group:        step.Group,
		DoneActorIDs: make([]string, 0, len(step.ActorIDs)),
	}

	e.emit(gs, ActionRequested{
		Round:    gs.Round,
		Ability:  step.Ability,
		ActorIDs: cloneStrings(step.ActorIDs),
	})
	return nil
}

func (e *Engine) advanceWaiting(gs *GameState) error {
	prompt := gs.Night.Prompt
	return ErrWaitingForSubmission.Errorf(
		"waiting for %d of %d %s submission(s)",
		len(prompt.ActorIDs)-len(prompt.DoneActorIDs), len(prompt.ActorIDs), prompt.Ability,
	)
}

func (e *Engine) advanceCloseStep(gs *GameState) error {
	e.emit(gs, ActionResolved{Round: gs.Round, Ability: gs.Night.Prompt.Ability})

	gs.Night.Prompt = nil
	gs.Night.Index++
	return nil
}

func (e *Engine) advanceResolveNight(gs *GameState) error {
	e.resolveNight(gs)
	return nil
}

func (e *Engine) advanceRevealInfo(gs *GameState) error {
	gs.DayStep = DayStepDayPrompt
	e.emit(gs, InformationRevealed{
		Round:         gs.Round,
		EliminatedIDs: cloneStrings(gs.LastNightEliminated),
	})
	return nil
}

func (e *Engine) advanceOpenVote(gs *GameState) error {
	gs.Vote = Vote{
		Open:  true,
		Votes: make(map[string]string),
	}
	gs.DayStep = DayStepVoting

	e.emit(gs, VoteStarted{Round: gs.Round, Voters: len(gs.eligibleVoters())})
	return nil
}

func (e *Engine) advanceResolveVote(gs *GameState) error {
	if _, err := e.resolveVote(gs); err != nil {
		return err
	}

	if result := Evaluate(gs); result != nil {
		e.endGame(gs, result)
	}
	return nil
}

func (e *Engine) advanceDayResult(gs *GameState) error {
	gs.DayStep = DayStepDayResult
	return nil
}

func (e *Engine) advanceNextNight(gs *GameState) error {
	e.startNight(gs, gs.Round+1)
	return nil
}
