package game

import (
	"fmt"
	"strings"
)

// NarrationCursor 变化时，叙述方才需要重新获取文案
type NarrationCursor struct {
	Phase         Phase     `json:"phase"`
	Round         int       `json:"round"`
	StoryStep     int       `json:"story_step"`
	DayStep       DayStep   `json:"day_step"`
	VoteOpen      bool      `json:"vote_open"`
	VoteResolved  bool      `json:"vote_resolved"`
	PromptAbility Ability   `json:"prompt_ability"`
	PromptDone    bool      `json:"prompt_done"`
	NightIndex    int       `json:"night_index"`
	LastEventType EventType `json:"last_event_type"`
}

// Key 把游标压成一个可比较的字符串
func (c NarrationCursor) Key() string {
	parts := []string{
		string(c.Phase),
		fmt.Sprint(c.Round),
		fmt.Sprint(c.StoryStep),
		string(c.DayStep),
		fmt.Sprint(c.VoteOpen),
		fmt.Sprint(c.VoteResolved),
		string(c.PromptAbility),
		fmt.Sprint(c.PromptDone),
		fmt.Sprint(c.NightIndex),
		string(c.LastEventType),
	}
	return strings.Join(parts, "|")
}

func (gs *GameState) Cursor() NarrationCursor {
	c := NarrationCursor{
		Phase:         gs.Phase,
		Round:         gs.Round,
		StoryStep:     gs.StoryStep,
		DayStep:       gs.DayStep,
		VoteOpen:      gs.Vote.Open,
		VoteResolved:  gs.Vote.Resolved,
		LastEventType: gs.lastEventType(),
	}
	if gs.Night != nil {
		c.NightIndex = gs.Night.Index
		if gs.Night.Prompt != nil {
			c.PromptAbility = gs.Night.Prompt.Ability
			c.PromptDone = gs.Night.Prompt.Done
		}
	}
	return c
}

type PublicPlayer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Alive      bool   `json:"alive"`
	IsNarrator bool   `json:"is_narrator"`
}

type VoteView struct {
	Open     bool        `json:"open"`
	Resolved bool        `json:"resolved"`
	Result   *VoteResult `json:"result,omitempty"`
	Recorded int         `json:"recorded"`
	Eligible int         `json:"eligible"`
	CanVote  bool        `json:"can_vote"`
	// nil 表示尚未投票，指向空字符串表示弃权
	MyBallot *string `json:"my_ballot"`
	// 仅主持人可见，值为 nil 表示弃权
	Ballots map[string]*string `json:"ballots,omitempty"`
}

type PromptView struct {
	Ability   Ability  `json:"ability"`
	Group     string   `json:"group,omitempty"`
	ActorIDs  []string `json:"actor_ids,omitempty"`
	Done      bool     `json:"done"`
	MyTurn    bool     `json:"my_turn"`
	Submitted bool     `json:"submitted"`
}

type QueueStepView struct {
	Ability Ability `json:"ability"`
	Group   string  `json:"group,omitempty"`
	Actors  int     `json:"actors"`
}

// ViewerState 是按观看者裁剪后的状态快照，与 GameState 不共享任何可变数据
type ViewerState struct {
	Phase      Phase   `json:"phase"`
	Round      int     `json:"round"`
	StoryStep  int     `json:"story_step"`
	DayStep    DayStep `json:"day_step"`
	NarratorID string  `json:"narrator_id"`
	IsNarrator bool    `json:"is_narrator"`

	Me         Player         `json:"me"`
	Silenced   bool           `json:"silenced"`
	Players    []PublicPlayer `json:"players"`
	FullRoster []Player       `json:"full_roster,omitempty"`

	Vote       VoteView        `json:"vote"`
	NightIndex int             `json:"night_index"`
	NightQueue []QueueStepView `json:"night_queue,omitempty"`
	Prompt     *PromptView     `json:"night_prompt,omitempty"`

	Investigation        *Investigation  `json:"investigation,omitempty"`
	InvestigationHistory []Investigation `json:"investigation_history,omitempty"`

	LastNightEliminated []string   `json:"last_night_eliminated"`
	GameOver            bool       `json:"game_over"`
	Result              *WinResult `json:"result,omitempty"`

	Events []Event         `json:"events"`
	Cursor NarrationCursor `json:"cursor"`
}

func copyPlayer(p *Player) Player {
	out := Player{
		ID:         p.ID,
		Name:       p.Name,
		Alive:      p.Alive,
		IsNarrator: p.IsNarrator,
	}
	if p.Role != nil {
		role := *p.Role
		role.Abilities = append([]Ability(nil), p.Role.Abilities...)
		out.Role = &role
	}
	if p.Character != nil {
		c := *p.Character
		out.Character = &c
	}
	return out
}

// Snapshot 生成某个玩家可以看到的状态
func (e *Engine) Snapshot(gs *GameState, viewerID string) (ViewerState, error) {
	viewer, ok := gs.player(viewerID)
	if !ok {
		return ViewerState{}, ErrPlayerNotFound.Errorf("player %q is not part of this game", viewerID)
	}

	isNarrator := viewer.IsNarrator

	vs := ViewerState{
		Phase:               gs.Phase,
		Round:               gs.Round,
		StoryStep:           gs.StoryStep,
		DayStep:             gs.DayStep,
		NarratorID:          gs.NarratorID,
		IsNarrator:          isNarrator,
		Me:                  copyPlayer(viewer),
		Silenced:            gs.Silenced[viewerID],
		Players:             make([]PublicPlayer, 0, len(gs.Order)),
		LastNightEliminated: cloneStrings(gs.LastNightEliminated),
		GameOver:            gs.GameOver,
		Cursor:              gs.Cursor(),
	}
	if vs.LastNightEliminated == nil {
		vs.LastNightEliminated = []string{}
	}

	for _, id := range gs.Order {
		p := gs.Players[id]
		vs.Players = append(vs.Players, PublicPlayer{
			ID:         p.ID,
			Name:       p.Name,
			Alive:      p.Alive,
			IsNarrator: p.IsNarrator,
		})
	}

	if isNarrator || gs.GameOver {
		vs.FullRoster = make([]Player, 0, len(gs.Order))
		for _, id := range gs.Order {
			vs.FullRoster = append(vs.FullRoster, copyPlayer(gs.Players[id]))
		}
	}

	if gs.Result != nil {
		result := *gs.Result
		vs.Result = &result
	}

	vs.Vote = e.voteView(gs, viewerID, isNarrator)

	if gs.Night != nil {
		vs.NightIndex = gs.Night.Index
		if isNarrator {
			vs.NightQueue = make([]QueueStepView, 0, len(gs.Night.Queue))
			for _, step := range gs.Night.Queue {
				vs.NightQueue = append(vs.NightQueue, QueueStepView{
					Ability: step.Ability,
					Group:   step.Group,
					Actors:  len(step.ActorIDs),
				})
			}
		}

		if prompt := gs.Night.Prompt; prompt != nil {
			myTurn := containsString(prompt.ActorIDs, viewerID)
			// 其他玩家只知道夜晚正在进行，不知道轮到谁
			if isNarrator || myTurn {
				pv := &PromptView{
					Ability:   prompt.Ability,
					Group:     prompt.Group,
					Done:      prompt.Done,
					MyTurn:    myTurn,
					Submitted: containsString(prompt.DoneActorIDs, viewerID),
				}
				if isNarrator {
					pv.ActorIDs = cloneStrings(prompt.ActorIDs)
				}
				vs.Prompt = pv
			}
		}
	}

	if inv, ok := gs.Investigations[viewerID]; ok {
		vs.Investigation = &inv
	}
	if history := gs.InvestigationHistory[viewerID]; len(history) > 0 {
		vs.InvestigationHistory = append([]Investigation(nil), history...)
	}

	vs.Events = make([]Event, 0, len(gs.Events))
	for _, ev := range gs.Events {
		if isNarrator || ev.Payload.Public() {
			vs.Events = append(vs.Events, ev)
		}
	}

	return vs, nil
}

func (e *Engine) voteView(gs *GameState, viewerID string, isNarrator bool) VoteView {
	eligible := gs.eligibleVoters()

	vv := VoteView{
		Open:     gs.Vote.Open,
		Resolved: gs.Vote.Resolved,
		Recorded: countRecorded(gs, eligible),
		Eligible: len(eligible),
		CanVote:  gs.Vote.Open && !gs.Vote.Resolved && gs.isEligibleVoter(viewerID),
	}

	if gs.Vote.Result != nil {
		result := *gs.Vote.Result
		result.Tally = append([]TallyEntry(nil), gs.Vote.Result.Tally...)
		vv.Result = &result
	}

	if ballot, ok := gs.Vote.Votes[viewerID]; ok {
		vv.MyBallot = &ballot
	}

	if isNarrator {
		vv.Ballots = make(map[string]*string, len(gs.Vote.Votes))
		for voter, target := range gs.Vote.Votes {
			if target == "" {
				vv.Ballots[voter] = nil
				continue
			}
			vv.Ballots[voter] = &target
		}
	}

	return vv
}
