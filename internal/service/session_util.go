package service

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"whodunnit-be/internal/service/dto"
	"whodunnit-be/internal/service/game"
	"whodunnit-be/internal/service/narration"
)

const (
	defaultPlayerName = "Anonymous"
	maxNameRunes      = 24

	defaultQuickstartCount = 8
	maxQuickstartCount     = 24

	// 已结束的会话保留一段时间，方便玩家查看结果
	endedRetention = 10 * time.Minute
)

type member struct {
	id          string
	name        string
	deviceToken string
	connected   bool
	joinedAt    time.Time
}

// session 的所有字段都由 mu 保护
type session struct {
	mu sync.RWMutex

	id       string
	gameType string
	theme    *narration.Theme
	state    string
	hostID   string
	// 按加入顺序
	members []*member

	createdAt  time.Time
	startedAt  time.Time
	lastActive time.Time

	engine *game.Engine
	game   *game.GameState
}

func (s *session) memberByToken(token string) *member {
	if token == "" {
		return nil
	}
	for _, m := range s.members {
		if m.deviceToken == token {
			return m
		}
	}
	return nil
}

// activeMember 解析已开始游戏中的调用者
func (s *session) activeMember(token string) (*member, error) {
	if s.game == nil {
		return nil, game.ErrGameNotStarted
	}
	m := s.memberByToken(token)
	if m == nil {
		return nil, game.ErrPlayerNotFound
	}
	return m, nil
}

func (s *session) start(now time.Time) error {
	roster := make([]game.RosterEntry, 0, len(s.members))
	for _, m := range s.members {
		roster = append(roster, game.RosterEntry{ID: m.id, Name: m.name})
	}

	gs, err := s.engine.StartGame(roster, s.hostID)
	if err != nil {
		return err
	}

	s.game = gs
	s.state = dto.STATE_ACTIVE
	s.startedAt = now
	s.lastActive = now
	return nil
}

func (s *session) afterMutation(now time.Time) {
	s.lastActive = now
	if s.game != nil && s.game.GameOver {
		s.state = dto.STATE_ENDED
	}
}

func (s *session) view(viewerID string) (dto.ViewResponse, error) {
	vs, err := s.engine.Snapshot(s.game, viewerID)
	if err != nil {
		return dto.ViewResponse{}, err
	}

	resp := dto.ViewResponse{
		SessionID:   s.id,
		State:       s.state,
		GameType:    s.gameType,
		ThemeID:     s.theme.ID,
		ViewerState: vs,
	}

	briefRole := "narrator"
	if vs.Me.Role != nil {
		briefRole = vs.Me.Role.ID
	}
	if brief, ok := s.theme.Brief(briefRole); ok {
		resp.RoleBrief = &brief
	}

	return resp, nil
}

func (s *session) playerInfo(m *member) dto.Player {
	return dto.Player{
		ID:        m.id,
		Name:      m.name,
		Connected: m.connected,
		IsHost:    m.id == s.hostID,
		JoinedAt:  m.joinedAt,
	}
}

func (s *session) info() dto.Session {
	players := make([]dto.Player, 0, len(s.members))
	for _, m := range s.members {
		players = append(players, s.playerInfo(m))
	}

	info := dto.Session{
		ID:           s.id,
		GameType:     s.gameType,
		ThemeID:      s.theme.ID,
		State:        s.state,
		HostPlayerID: s.hostID,
		PlayerCount:  len(s.members),
		Players:      players,
		CreatedAt:    s.createdAt,
	}
	if !s.startedAt.IsZero() {
		started := s.startedAt
		info.StartedAt = &started
	}

	return info
}

// normalizeName 去掉首尾空白并截断到 24 个字符，空名字使用默认值
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultPlayerName
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		name = string([]rune(name)[:maxNameRunes])
	}
	return name
}

// quickstartCount 把请求的人数限制在可以开局的范围内（含主持人）
func quickstartCount(requested, minPlayers int) int {
	if requested <= 0 {
		requested = defaultQuickstartCount
	}
	return min(max(requested, minPlayers+1), maxQuickstartCount)
}

func isSessionExpired(s *session, now time.Time, ttl time.Duration) bool {
	if s == nil {
		return true
	}

	idle := now.Sub(s.lastActive)

	if s.state == dto.STATE_ENDED {
		return idle > min(ttl, endedRetention)
	}

	return idle > ttl
}
