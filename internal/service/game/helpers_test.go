package game

import (
	"bytes"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func testOptions(seed uint64) []Option {
	return []Option{
		WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))),
		WithClock(func() time.Time { return fixedNow }),
	}
}

func newTestEngine(seed uint64, opts ...Option) *Engine {
	return NewEngine(DefaultCatalog(), append(testOptions(seed), opts...)...)
}

// 关闭特殊角色抽取的角色表，便于断言确定的角色构成
func noSpecialsCatalog(t *testing.T) *Catalog {
	t.Helper()

	data := bytes.Replace(defaultCatalogData, []byte("special_chance: 0.3"), []byte("special_chance: 0"), 1)
	c, err := LoadCatalog(data)
	require.NoError(t, err)
	require.Zero(t, c.Rules().SpecialChance)

	return c
}

type seat struct {
	id   string
	role string
}

// fixture 直接构造一个已开始的游戏，narrator 排在名单首位
func fixture(t *testing.T, e *Engine, narratorID string, seats ...seat) *GameState {
	t.Helper()

	gs := &GameState{
		Phase:                PhaseSetup,
		NarratorID:           narratorID,
		HostID:               narratorID,
		Players:              make(map[string]*Player),
		Investigations:       make(map[string]Investigation),
		InvestigationHistory: make(map[string][]Investigation),
		Silenced:             make(map[string]bool),
		AbilityUses:          make(map[string]map[Ability]int),
		Vote:                 Vote{Votes: make(map[string]string)},
	}

	gs.Players[narratorID] = &Player{ID: narratorID, Name: narratorID, Alive: true, IsNarrator: true}
	gs.Order = append(gs.Order, narratorID)

	for _, s := range seats {
		def, ok := e.Catalog().Role(s.role)
		require.True(t, ok, "unknown role %s", s.role)

		gs.Players[s.id] = &Player{ID: s.id, Name: s.id, Alive: true, Role: def.instantiate()}
		gs.Order = append(gs.Order, s.id)
	}

	return gs
}

// toVoting 把游戏直接置于白天投票阶段
func toVoting(t *testing.T, e *Engine, gs *GameState, round int) {
	t.Helper()

	gs.Phase = PhaseDay
	gs.Round = round
	gs.StoryStep = storyStepMainLoop
	gs.DayStep = DayStepDayPrompt
	require.NoError(t, e.Advance(gs, gs.NarratorID))
	require.Equal(t, DayStepVoting, gs.DayStep)
}

func castVotes(t *testing.T, e *Engine, gs *GameState, ballots map[string]string) {
	t.Helper()

	for voter, target := range ballots {
		_, err := e.SubmitVote(gs, voter, target)
		require.NoError(t, err, "vote from %s", voter)
	}
}

func alive(gs *GameState, id string) bool {
	return gs.Players[id].Alive
}

func playersWithRole(gs *GameState, roleID string) []string {
	var ids []string
	for _, id := range gs.Order {
		p := gs.Players[id]
		if p.Role != nil && p.Role.ID == roleID {
			ids = append(ids, id)
		}
	}
	return ids
}

// cloneState 深拷贝，用于断言被拒绝的操作没有留下任何修改
func cloneState(gs *GameState) *GameState {
	out := *gs

	out.Players = make(map[string]*Player, len(gs.Players))
	for id, p := range gs.Players {
		cp := copyPlayer(p)
		out.Players[id] = &cp
	}
	out.Order = cloneStrings(gs.Order)
	out.Events = append([]Event(nil), gs.Events...)

	if gs.Night != nil {
		nr := *gs.Night
		nr.Queue = append([]NightStep(nil), gs.Night.Queue...)
		if gs.Night.Prompt != nil {
			p := *gs.Night.Prompt
			p.ActorIDs = cloneStrings(p.ActorIDs)
			p.DoneActorIDs = cloneStrings(p.DoneActorIDs)
			nr.Prompt = &p
		}
		nr.Actions = make(map[Ability]map[string]string, len(gs.Night.Actions))
		for a, m := range gs.Night.Actions {
			inner := make(map[string]string, len(m))
			for k, v := range m {
				inner[k] = v
			}
			nr.Actions[a] = inner
		}
		out.Night = &nr
	}

	out.Vote.Votes = make(map[string]string, len(gs.Vote.Votes))
	for k, v := range gs.Vote.Votes {
		out.Vote.Votes[k] = v
	}
	if gs.Vote.Result != nil {
		r := *gs.Vote.Result
		out.Vote.Result = &r
	}

	out.Investigations = make(map[string]Investigation, len(gs.Investigations))
	for k, v := range gs.Investigations {
		out.Investigations[k] = v
	}
	out.InvestigationHistory = make(map[string][]Investigation, len(gs.InvestigationHistory))
	for k, v := range gs.InvestigationHistory {
		out.InvestigationHistory[k] = append([]Investigation(nil), v...)
	}
	out.Silenced = make(map[string]bool, len(gs.Silenced))
	for k, v := range gs.Silenced {
		out.Silenced[k] = v
	}
	out.AbilityUses = make(map[string]map[Ability]int, len(gs.AbilityUses))
	for k, v := range gs.AbilityUses {
		inner := make(map[Ability]int, len(v))
		for a, n := range v {
			inner[a] = n
		}
		out.AbilityUses[k] = inner
	}
	out.LastNightEliminated = cloneStrings(gs.LastNightEliminated)

	return &out
}
