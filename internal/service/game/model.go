package game

// 游戏阶段
type Phase string

const (
	PhaseSetup Phase = "setup"
	PhaseNight Phase = "night"
	PhaseDay   Phase = "day"
	PhaseEnded Phase = "ended"
)

// 白天阶段内部的子步骤，仅在 PhaseDay 时有意义
type DayStep string

const (
	DayStepNone        DayStep = ""
	DayStepNightResult DayStep = "night_result"
	DayStepDayPrompt   DayStep = "day_prompt"
	DayStepVoting      DayStep = "voting"
	DayStepDayResult   DayStep = "day_result"
)

// 剧情步骤：setup 阶段的开场旁白以及第一夜/第一天的固定框架
const (
	storyStepSetupDone   = 2
	storyStepNightIntro  = 3
	storyStepDayIntro    = 4
	storyStepMainLoop    = 0
	firstRound           = 1
	secondRound          = firstRound + 1
	abstainSentinel      = "abstain"
	mafiaGroup           = "mafia"
	independentKillGroup = "independent"
)

type Alignment string

const (
	AlignmentTown        Alignment = "town"
	AlignmentMafia       Alignment = "mafia"
	AlignmentIndependent Alignment = "independent"
	AlignmentNeutral     Alignment = "neutral"
)

type Ability string

const (
	AbilityMafiaKill            Ability = "mafia_kill"
	AbilityKill                 Ability = "kill"
	AbilitySingleKill           Ability = "single_kill"
	AbilityProtect              Ability = "protect"
	AbilityBlock                Ability = "block"
	AbilitySilence              Ability = "silence"
	AbilityInvestigateAlignment Ability = "investigate_alignment"
	AbilityDoubleVote           Ability = "double_vote"
	AbilityAppearInnocent       Ability = "appear_innocent"
)

// Role 是分配给某个玩家的角色副本
type Role struct {
	ID         string    `json:"id"`
	Alignment  Alignment `json:"alignment"`
	Objective  string    `json:"objective"`
	Abilities  []Ability `json:"abilities"`
	VoteWeight int       `json:"vote_weight"`
}

func (r *Role) Has(ability Ability) bool {
	if r == nil {
		return false
	}
	for _, a := range r.Abilities {
		if a == ability {
			return true
		}
	}
	return false
}

// Character 是主题提供的角色包装文字，核心只做透传
type Character struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Objective   string `json:"objective" yaml:"objective"`
}

// RosterEntry 是会话目录交给核心的玩家名单条目
type RosterEntry struct {
	ID   string
	Name string
}

// Player 是玩家在一局游戏中的状态，记录永远不会被删除
type Player struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Alive      bool       `json:"alive"`
	IsNarrator bool       `json:"is_narrator"`
	Role       *Role      `json:"role,omitempty"`
	Character  *Character `json:"character,omitempty"`
}

// NightStep 是夜晚队列中的一个提示步骤
type NightStep struct {
	Ability  Ability  `json:"ability"`
	ActorIDs []string `json:"actor_ids"`
	Group    string   `json:"group,omitempty"`
}

// NightPrompt 是当前正在等待提交的步骤
type NightPrompt struct {
	Ability      Ability  `json:"ability"`
	ActorIDs     []string `json:"actor_ids"`
	Group        string   `json:"group,omitempty"`
	DoneActorIDs []string `json:"done_actor_ids"`
	Done         bool     `json:"done"`
}

// NightRound 只在夜晚主循环中存在，进入白天时整体丢弃
type NightRound struct {
	Queue  []NightStep
	Index  int
	Prompt *NightPrompt
	// ability -> actorID -> targetID
	Actions map[Ability]map[string]string
}

func (nr *NightRound) targets(ability Ability) map[string]bool {
	set := make(map[string]bool)
	for _, target := range nr.Actions[ability] {
		set[target] = true
	}
	return set
}

type TallyEntry struct {
	TargetID string `json:"target_id"`
	Weight   int    `json:"weight"`
}

// 投票结果的去向
const (
	VoteOutcomeEliminated   = "eliminated"
	VoteOutcomeNoCandidates = "no_candidates"
	VoteOutcomeTie          = "tie"
	VoteOutcomeAbstained    = "abstained"
)

type VoteResult struct {
	EliminatedID  string       `json:"eliminated_id"`
	Tally         []TallyEntry `json:"tally"`
	AbstainWeight int          `json:"abstain_weight"`
	Outcome       string       `json:"outcome"`
}

// Vote 是当天的投票状态，空字符串的选票表示弃权
type Vote struct {
	Open     bool
	Votes    map[string]string
	Resolved bool
	Result   *VoteResult
}

type Investigation struct {
	TargetID  string    `json:"target_id"`
	Alignment Alignment `json:"alignment"`
	Round     int       `json:"round"`
}

type FactionCounts struct {
	Mafia    int `json:"mafia"`
	NonMafia int `json:"non_mafia"`
	Alive    int `json:"alive"`
}

// 胜利方与原因
const (
	WinnerMafia = "mafia"
	WinnerTown  = "town"

	ReasonMafiaMajority   = "mafia_majority"
	ReasonMafiaEliminated = "mafia_eliminated"
)

type WinResult struct {
	Winner string        `json:"winner"`
	Reason string        `json:"reason"`
	Counts FactionCounts `json:"counts"`
}

// GameState 由核心独占并修改，玩家之间只通过 ID 互相引用
type GameState struct {
	Phase      Phase
	Round      int
	StoryStep  int
	DayStep    DayStep
	NarratorID string
	HostID     string

	Players map[string]*Player
	// 名单原始顺序
	Order []string

	Events []Event

	Night *NightRound
	Vote  Vote

	Investigations       map[string]Investigation
	InvestigationHistory map[string][]Investigation
	Silenced             map[string]bool
	AbilityUses          map[string]map[Ability]int
	LastNightEliminated  []string

	GameOver bool
	Result   *WinResult
}

func (gs *GameState) player(id string) (*Player, bool) {
	p, ok := gs.Players[id]
	return p, ok
}

// 存活且不是主持人的玩家，按名单顺序
func (gs *GameState) alivePlayers() []*Player {
	players := make([]*Player, 0, len(gs.Order))
	for _, id := range gs.Order {
		p := gs.Players[id]
		if p.Alive && !p.IsNarrator {
			players = append(players, p)
		}
	}
	return players
}

func (gs *GameState) isTargetable(id string) bool {
	p, ok := gs.player(id)
	return ok && p.Alive && !p.IsNarrator
}

func (gs *GameState) eligibleVoters() []*Player {
	voters := make([]*Player, 0, len(gs.Order))
	for _, p := range gs.alivePlayers() {
		if !gs.Silenced[p.ID] {
			voters = append(voters, p)
		}
	}
	return voters
}

func (gs *GameState) lastEventType() EventType {
	if len(gs.Events) == 0 {
		return ""
	}
	return gs.Events[len(gs.Events)-1].Type
}
