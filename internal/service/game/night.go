package game

import (
	"slices"

	"go.uber.org/zap"
)

// 夜晚步骤的固定顺序，独立杀手在 kill 位置各占一步
var nightOrder = []Ability{
	AbilityMafiaKill,
	AbilityProtect,
	AbilityBlock,
	AbilitySilence,
	AbilityInvestigateAlignment,
	AbilityKill,
	AbilitySingleKill,
}

// ActionSnapshot 是夜晚行动提交后的回执
type ActionSnapshot struct {
	Ability       Ability        `json:"ability"`
	ActorID       string         `json:"actor_id"`
	TargetID      string         `json:"target_id"`
	StepDone      bool           `json:"step_done"`
	Investigation *Investigation `json:"investigation,omitempty"`
}

// rotatePick 按字典序排序后轮换选出本夜的决策者，第一夜取第一个
func rotatePick(ids []string, round int) string {
	if len(ids) == 0 {
		return ""
	}

	sorted := cloneStrings(ids)
	slices.Sort(sorted)

	idx := (round - 1) % len(sorted)
	if idx < 0 {
		idx += len(sorted)
	}

	return sorted[idx]
}

// BuildNightQueue 根据当前存活玩家的能力生成本夜的提示队列
func (e *Engine) BuildNightQueue(gs *GameState) []NightStep {
	var (
		mafiaKillers       []string
		independentKillers []string
		byAbility          = make(map[Ability][]string)
	)

	for _, p := range gs.alivePlayers() {
		if p.Role == nil {
			continue
		}

		for _, ability := range p.Role.Abilities {
			if !e.hasUsesLeft(gs, p.ID, ability) {
				continue
			}

			switch ability {
			case AbilityKill:
				if p.Role.Alignment == AlignmentMafia {
					mafiaKillers = append(mafiaKillers, p.ID)
				} else {
					independentKillers = append(independentKillers, p.ID)
				}
			case AbilityProtect, AbilityBlock, AbilitySilence, AbilityInvestigateAlignment, AbilitySingleKill:
				if !containsString(byAbility[ability], p.ID) {
					byAbility[ability] = append(byAbility[ability], p.ID)
				}
			}
		}
	}

	queue := make([]NightStep, 0, len(nightOrder)+len(independentKillers))

	for _, ability := range nightOrder {
		switch ability {
		case AbilityMafiaKill:
			if len(mafiaKillers) == 0 {
				continue
			}
			queue = append(queue, NightStep{
				Ability:  AbilityMafiaKill,
				ActorIDs: []string{rotatePick(mafiaKillers, gs.Round)},
				Group:    mafiaGroup,
			})
		case AbilityKill:
			for _, id := range independentKillers {
				queue = append(queue, NightStep{
					Ability:  AbilityKill,
					ActorIDs: []string{id},
					Group:    independentKillGroup,
				})
			}
		default:
			actors := byAbility[ability]
			if len(actors) == 0 {
				continue
			}
			queue = append(queue, NightStep{
				Ability:  ability,
				ActorIDs: actors,
			})
		}
	}

	return queue
}

func (e *Engine) hasUsesLeft(gs *GameState, actorID string, ability Ability) bool {
	def, ok := e.catalog.Ability(ability)
	if !ok || def.UsesPerGame <= 0 {
		return true
	}
	return gs.AbilityUses[actorID][ability] < def.UsesPerGame
}

// startNight 进入夜晚主循环：清空上一轮遗留的夜间与投票数据并生成队列
func (e *Engine) startNight(gs *GameState, round int) {
	gs.Phase = PhaseNight
	gs.Round = round
	gs.StoryStep = storyStepMainLoop
	gs.DayStep = DayStepNone
	gs.Vote = Vote{Votes: make(map[string]string)}

	// 调查结果只在本夜重新得出，旧结果在任何提交之前清除
	gs.Investigations = make(map[string]Investigation)
	gs.Silenced = make(map[string]bool)
	gs.LastNightEliminated = nil

	gs.Night = &NightRound{
		Queue:   e.BuildNightQueue(gs),
		Actions: make(map[Ability]map[string]string),
	}

	e.emit(gs, RoundStarted{Round: round})
	e.emit(gs, NightStarted{Round: round})

	zap.L().Debug(
		"进入夜晚",
		zap.Int("round", round),
		zap.Int("steps", len(gs.Night.Queue)),
	)
}

// SubmitNightAction 记录当前步骤中某个行动者的目标
func (e *Engine) SubmitNightAction(gs *GameState, actorID string, ability Ability, targetID string) (ActionSnapshot, error) {
	if gs.GameOver || gs.Phase != PhaseNight || gs.Night == nil || gs.Night.Prompt == nil {
		return ActionSnapshot{}, ErrNightClosed
	}

	nr := gs.Night
	prompt := nr.Prompt

	if ability != prompt.Ability {
		return ActionSnapshot{}, ErrWrongAbility.Errorf(
			"the active night step is %q, not %q", prompt.Ability, ability,
		)
	}

	actor, ok := gs.player(actorID)
	if !ok || actor.IsNarrator {
		return ActionSnapshot{}, ErrNotYourTurn
	}
	if !actor.Alive {
		return ActionSnapshot{}, ErrNotAlive
	}
	if !containsString(prompt.ActorIDs, actorID) {
		return ActionSnapshot{}, ErrNotYourTurn
	}

	teamKill := ability == AbilityMafiaKill &&
		actor.Role.Has(AbilityKill) &&
		actor.Role.Alignment == AlignmentMafia
	if !actor.Role.Has(ability) && !teamKill {
		return ActionSnapshot{}, ErrMissingAbility
	}

	if !gs.isTargetable(targetID) {
		return ActionSnapshot{}, ErrInvalidTarget.Errorf("target %q is not an alive player", targetID)
	}

	// 校验完毕，开始修改状态
	if nr.Actions[ability] == nil {
		nr.Actions[ability] = make(map[string]string)
	}
	nr.Actions[ability][actorID] = targetID

	if !containsString(prompt.DoneActorIDs, actorID) {
		prompt.DoneActorIDs = append(prompt.DoneActorIDs, actorID)
	}
	prompt.Done = true
	for _, id := range prompt.ActorIDs {
		if _, recorded := nr.Actions[ability][id]; !recorded {
			prompt.Done = false
			break
		}
	}

	snap := ActionSnapshot{
		Ability:  ability,
		ActorID:  actorID,
		TargetID: targetID,
		StepDone: prompt.Done,
	}

	if ability == AbilityInvestigateAlignment && !nr.targets(AbilityBlock)[actorID] {
		inv := e.investigate(gs, actorID, targetID)
		snap.Investigation = &inv
	}

	zap.L().Debug(
		"记录夜晚行动",
		zap.Int("round", gs.Round),
		zap.String("ability", string(ability)),
		zap.String("actor_id", actorID),
		zap.Bool("step_done", prompt.Done),
	)

	return snap, nil
}

func (e *Engine) investigate(gs *GameState, actorID, targetID string) Investigation {
	target := gs.Players[targetID]

	alignment := target.Role.Alignment
	if target.Role.Has(AbilityAppearInnocent) {
		alignment = AlignmentTown
	}

	inv := Investigation{
		TargetID:  targetID,
		Alignment: alignment,
		Round:     gs.Round,
	}
	gs.Investigations[actorID] = inv

	// 同一夜重复提交时替换而不是追加
	history := gs.InvestigationHistory[actorID]
	if n := len(history); n > 0 && history[n-1].Round == gs.Round {
		history[n-1] = inv
	} else {
		history = append(history, inv)
	}
	gs.InvestigationHistory[actorID] = history

	return inv
}

type elimination struct {
	playerID string
	cause    string
}

// resolveNight 对整夜的记录一次性结算，重复调用不会重复生效
func (e *Engine) resolveNight(gs *GameState) {
	if gs.Phase != PhaseNight || gs.Night == nil {
		return
	}

	nr := gs.Night
	protects := nr.targets(AbilityProtect)
	blocks := nr.targets(AbilityBlock)
	silences := nr.targets(AbilitySilence)

	// 被封锁者本夜的调查结果作废
	for actorID, inv := range gs.Investigations {
		if !blocks[actorID] || inv.Round != gs.Round {
			continue
		}
		delete(gs.Investigations, actorID)
		history := gs.InvestigationHistory[actorID]
		if n := len(history); n > 0 && history[n-1].Round == gs.Round {
			gs.InvestigationHistory[actorID] = history[:n-1]
		}
	}

	var eliminated []elimination
	tryKill := func(targetID, cause string) {
		target, ok := gs.player(targetID)
		if !ok || !target.Alive || target.IsNarrator || protects[targetID] {
			return
		}
		target.Alive = false
		eliminated = append(eliminated, elimination{playerID: targetID, cause: cause})
	}

	for _, targetID := range nr.Actions[AbilityMafiaKill] {
		tryKill(targetID, CauseMafiaKill)
	}

	for _, ability := range []Ability{AbilityKill, AbilitySingleKill} {
		actions := nr.Actions[ability]
		actors := make([]string, 0, len(actions))
		for actorID := range actions {
			actors = append(actors, actorID)
		}
		slices.Sort(actors)

		for _, actorID := range actors {
			if blocks[actorID] {
				continue
			}
			e.consumeUse(gs, actorID, ability)
			tryKill(actions[actorID], string(ability))
		}
	}

	gs.Silenced = silences

	ids := make([]string, 0, len(eliminated))
	for _, el := range eliminated {
		ids = append(ids, el.playerID)
		e.emit(gs, PlayerEliminated{Round: gs.Round, PlayerID: el.playerID, Cause: el.cause})
	}
	gs.LastNightEliminated = ids

	zap.L().Debug(
		"夜晚结算完成",
		zap.Int("round", gs.Round),
		zap.Strings("eliminated", ids),
		zap.Int("silenced", len(silences)),
	)

	if result := Evaluate(gs); result != nil {
		e.endGame(gs, result)
		return
	}

	notable := ""
	if len(ids) > 0 {
		notable = ids[0]
	}

	e.emit(gs, NightEnded{Round: gs.Round, EliminatedID: notable})

	gs.Night = nil
	gs.Phase = PhaseDay
	gs.DayStep = DayStepNightResult

	e.emit(gs, DayStarted{Round: gs.Round})
}

func (e *Engine) consumeUse(gs *GameState, actorID string, ability Ability) {
	def, ok := e.catalog.Ability(ability)
	if !ok || def.UsesPerGame <= 0 {
		return
	}
	if gs.AbilityUses[actorID] == nil {
		gs.AbilityUses[actorID] = make(map[Ability]int)
	}
	gs.AbilityUses[actorID][ability]++
}
