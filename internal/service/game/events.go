package game

import "time"

// 事件类型，叙述模块按这些类型挑选文案
type EventType string

const (
	EventGameStarted         EventType = "game.started"
	EventNarratorAssigned    EventType = "narrator.assigned"
	EventRolesAssigned       EventType = "roles.assigned"
	EventStoryBeat           EventType = "story.beat"
	EventRoundStarted        EventType = "round.started"
	EventNightStarted        EventType = "night.started"
	EventActionRequested     EventType = "role.action.requested"
	EventActionResolved      EventType = "role.action.resolved"
	EventNightEnded          EventType = "night.ended"
	EventPlayerEliminated    EventType = "player.eliminated"
	EventDayStarted          EventType = "day.started"
	EventInformationRevealed EventType = "information.revealed"
	EventVoteStarted         EventType = "vote.started"
	EventVoteResolved        EventType = "vote.resolved"
	EventGameEnded           EventType = "game.ended"
)

// Payload 是封闭的事件载荷集合，只有本包内的类型可以实现
type Payload interface {
	Type() EventType
	// Public 为 false 的事件只对主持人可见
	Public() bool
	sealed()
}

// Event 一经追加就不再修改
type Event struct {
	ID        string    `json:"id"`
	Seq       int       `json:"seq"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   Payload   `json:"payload"`
}

type GameStarted struct {
	HostID      string `json:"host_id"`
	NarratorID  string `json:"narrator_id"`
	PlayerCount int    `json:"player_count"`
}

type NarratorAssigned struct {
	NarratorID string `json:"narrator_id"`
}

type RolesAssigned struct {
	Count int `json:"count"`
}

type StoryBeat struct {
	Step int `json:"step"`
}

type RoundStarted struct {
	Round int `json:"round"`
}

// 步骤数量会暴露死者是否持有夜间能力，只对主持人展示（见 ViewerState.NightQueue）
type NightStarted struct {
	Round int `json:"round"`
}

type ActionRequested struct {
	Round    int      `json:"round"`
	Ability  Ability  `json:"ability"`
	ActorIDs []string `json:"actor_ids"`
}

type ActionResolved struct {
	Round   int     `json:"round"`
	Ability Ability `json:"ability"`
}

type NightEnded struct {
	Round        int    `json:"round"`
	EliminatedID string `json:"eliminated_id,omitempty"`
}

// 淘汰原因
const (
	CauseMafiaKill  = "mafia_kill"
	CauseKill       = "kill"
	CauseSingleKill = "single_kill"
	CauseVote       = "vote"
)

type PlayerEliminated struct {
	Round    int    `json:"round"`
	PlayerID string `json:"player_id"`
	Cause    string `json:"cause"`
}

type DayStarted struct {
	Round int `json:"round"`
}

type InformationRevealed struct {
	Round         int      `json:"round"`
	EliminatedIDs []string `json:"eliminated_ids"`
}

type VoteStarted struct {
	Round  int `json:"round"`
	Voters int `json:"voters"`
}

type VoteResolved struct {
	Round         int          `json:"round"`
	EliminatedID  string       `json:"eliminated_id,omitempty"`
	Tally         []TallyEntry `json:"tally"`
	AbstainWeight int          `json:"abstain_weight"`
	Outcome       string       `json:"outcome"`
}

type GameEnded struct {
	Round  int           `json:"round"`
	Winner string        `json:"winner"`
	Reason string        `json:"reason"`
	Counts FactionCounts `json:"counts"`
}

func (GameStarted) Type() EventType         { return EventGameStarted }
func (NarratorAssigned) Type() EventType    { return EventNarratorAssigned }
func (RolesAssigned) Type() EventType       { return EventRolesAssigned }
func (StoryBeat) Type() EventType           { return EventStoryBeat }
func (RoundStarted) Type() EventType        { return EventRoundStarted }
func (NightStarted) Type() EventType        { return EventNightStarted }
func (ActionRequested) Type() EventType     { return EventActionRequested }
func (ActionResolved) Type() EventType      { return EventActionResolved }
func (NightEnded) Type() EventType          { return EventNightEnded }
func (PlayerEliminated) Type() EventType    { return EventPlayerEliminated }
func (DayStarted) Type() EventType          { return EventDayStarted }
func (InformationRevealed) Type() EventType { return EventInformationRevealed }
func (VoteStarted) Type() EventType         { return EventVoteStarted }
func (VoteResolved) Type() EventType        { return EventVoteResolved }
func (GameEnded) Type() EventType           { return EventGameEnded }

func (GameStarted) Public() bool         { return true }
func (NarratorAssigned) Public() bool    { return true }
func (RolesAssigned) Public() bool       { return true }
func (StoryBeat) Public() bool           { return true }
func (RoundStarted) Public() bool        { return true }
func (NightStarted) Public() bool        { return true }
func (ActionRequested) Public() bool     { return false }
func (ActionResolved) Public() bool      { return false }
func (NightEnded) Public() bool          { return true }
func (PlayerEliminated) Public() bool    { return true }
func (DayStarted) Public() bool          { return true }
func (InformationRevealed) Public() bool { return true }
func (VoteStarted) Public() bool         { return true }
func (VoteResolved) Public() bool        { return true }
func (GameEnded) Public() bool           { return true }

func (GameStarted) sealed()         {}
func (NarratorAssigned) sealed()    {}
func (RolesAssigned) sealed()       {}
func (StoryBeat) sealed()           {}
func (RoundStarted) sealed()        {}
func (NightStarted) sealed()        {}
func (ActionRequested) sealed()     {}
func (ActionResolved) sealed()      {}
func (NightEnded) sealed()          {}
func (PlayerEliminated) sealed()    {}
func (DayStarted) sealed()          {}
func (InformationRevealed) sealed() {}
func (VoteStarted) sealed()         {}
func (VoteResolved) sealed()        {}
func (GameEnded) sealed()           {}

func (e *Engine) emit(gs *GameState, payload Payload) {
	gs.Events = append(gs.Events, Event{
		ID:        GenID(),
		Seq:       len(gs.Events) + 1,
		Type:      payload.Type(),
		Timestamp: e.now(),
		Payload:   payload,
	})
}
