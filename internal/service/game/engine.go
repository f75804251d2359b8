package game

import (
	"time"

	"go.uber.org/zap"
)

// CharacterSource 为每个玩家挑选主题角色形象，roles 为 playerID -> roleID
type CharacterSource interface {
	AssignCharacters(roles map[string]string, order []string, r Rand) map[string]Character
}

// Engine 是无状态的规则引擎，所有可变数据都在 GameState 中
type Engine struct {
	catalog    *Catalog
	rng        Rand
	clock      func() time.Time
	characters CharacterSource
}

type Option func(*Engine)

// WithRand 注入随机源，非并发安全的实现会被 LockedRand 包装
func WithRand(r Rand) Option {
	return func(e *Engine) {
		e.rng = LockedRand(r)
	}
}

func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

func WithCharacters(src CharacterSource) Option {
	return func(e *Engine) {
		e.characters = src
	}
}

func NewEngine(catalog *Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		rng:     globalRand{},
		clock:   time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

func (e *Engine) now() time.Time {
	return e.clock()
}

// StartGame 在主机开始游戏时同步创建 GameState：挑选主持人并分配角色
func (e *Engine) StartGame(roster []RosterEntry, hostID string) (*GameState, error) {
	if len(roster)-1 < e.catalog.rules.MinPlayers {
		return nil, ErrInsufficientPlayers.Errorf(
			"need at least %d players besides the narrator, got %d",
			e.catalog.rules.MinPlayers, max(len(roster)-1, 0),
		)
	}

	seen := make(map[string]bool, len(roster))
	for _, entry := range roster {
		if entry.ID == "" || seen[entry.ID] {
			return nil, ErrInvalidRequest.Errorf("roster contains an empty or duplicate player id %q", entry.ID)
		}
		seen[entry.ID] = true
	}

	narrator := roster[e.rng.IntN(len(roster))]

	gameplayers := make([]RosterEntry, 0, len(roster)-1)
	for _, entry := range roster {
		if entry.ID != narrator.ID {
			gameplayers = append(gameplayers, entry)
		}
	}

	assignments, err := e.AssignRoles(gameplayers)
	if err != nil {
		return nil, err
	}

	gs := &GameState{
		Phase:                PhaseSetup,
		NarratorID:           narrator.ID,
		HostID:               hostID,
		Players:              make(map[string]*Player, len(roster)),
		Order:                make([]string, 0, len(roster)),
		Investigations:       make(map[string]Investigation),
		InvestigationHistory: make(map[string][]Investigation),
		Silenced:             make(map[string]bool),
		AbilityUses:          make(map[string]map[Ability]int),
	}
	gs.Vote = Vote{Votes: make(map[string]string)}

	for _, entry := range roster {
		p := &Player{
			ID:    entry.ID,
			Name:  entry.Name,
			Alive: true,
		}
		if entry.ID == narrator.ID {
			p.IsNarrator = true
		} else {
			p.Role = assignments[entry.ID]
		}

		gs.Players[entry.ID] = p
		gs.Order = append(gs.Order, entry.ID)
	}

	if e.characters != nil {
		roleIDs := make(map[string]string, len(assignments))
		for id, role := range assignments {
			roleIDs[id] = role.ID
		}
		for id, c := range e.characters.AssignCharacters(roleIDs, gs.Order, e.rng) {
			if p, ok := gs.Players[id]; ok && !p.IsNarrator {
				p.Character = &c
			}
		}
	}

	e.emit(gs, GameStarted{HostID: hostID, NarratorID: narrator.ID, PlayerCount: len(roster)})
	e.emit(gs, NarratorAssigned{NarratorID: narrator.ID})
	e.emit(gs, RolesAssigned{Count: len(assignments)})

	zap.L().Info(
		"游戏开始",
		zap.String("narrator_id", narrator.ID),
		zap.Int("player_count", len(roster)),
	)

	return gs, nil
}
