package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"whodunnit-be/internal/service/dto"
	"whodunnit-be/internal/service/game"
	"whodunnit-be/internal/service/narration"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultSessionTTL      = 6 * time.Hour
	defaultCleanupInterval = time.Minute
)

type SessionConfig struct {
	Catalog         *game.Catalog
	Themes          *narration.Registry
	TTL             time.Duration
	CleanupInterval time.Duration
	DevTools        bool

	// 测试时可注入
	Rand  game.Rand
	Clock func() time.Time
}

type SessionService struct {
	state *sessionServiceState

	catalog  *game.Catalog
	themes   *narration.Registry
	ttl      time.Duration
	devTools bool
	rng      game.Rand
	clock    func() time.Time
}

type sessionServiceState struct {
	mu sync.RWMutex

	// 从会话 ID 到会话
	sessions map[string]*session

	cleanUpDone chan struct{}
	closeOnce   sync.Once
}

func NewSessionService(cfg SessionConfig) *SessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultSessionTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaultCleanupInterval
	}
	// 所有会话共用同一个随机源，读锁下的文案挑选也会用到它
	cfg.Rand = game.LockedRand(cfg.Rand)
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	state := &sessionServiceState{
		sessions:    make(map[string]*session),
		cleanUpDone: make(chan struct{}),
	}

	ss := &SessionService{
		state:    state,
		catalog:  cfg.Catalog,
		themes:   cfg.Themes,
		ttl:      cfg.TTL,
		devTools: cfg.DevTools,
		rng:      cfg.Rand,
		clock:    cfg.Clock,
	}

	// 启动一个 goroutine 定期清理过期的会话
	go ss.startCleanupLoop(cfg.CleanupInterval)

	return ss
}

func (ss *SessionService) startCleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ss.state.cleanUpDone:
			return

		case <-ticker.C:
			ss.removeExpired(ss.clock())
		}
	}
}

// removeExpired 删除空闲超时或已经结束的会话，返回删除的数量
func (ss *SessionService) removeExpired(now time.Time) int {
	ss.state.mu.Lock()
	defer ss.state.mu.Unlock()

	removed := 0
	for sessionID, s := range ss.state.sessions {
		s.mu.RLock()
		expired := isSessionExpired(s, now, ss.ttl)
		s.mu.RUnlock()

		if expired {
			zap.S().Infof("会话 %s 状态失效，开始清理", sessionID)
			delete(ss.state.sessions, sessionID)
			removed++
		}
	}

	return removed
}

func (ss *SessionService) Close() {
	ss.state.closeOnce.Do(func() {
		close(ss.state.cleanUpDone)
	})
}

func (ss *SessionService) DevTools() bool {
	return ss.devTools
}

func (ss *SessionService) lookup(sessionID string) (*session, error) {
	if sessionID == "" {
		return nil, game.ErrInvalidRequest.Errorf("session id must not be empty")
	}

	ss.state.mu.RLock()
	s := ss.state.sessions[sessionID]
	ss.state.mu.RUnlock()

	if s == nil {
		return nil, game.ErrSessionNotFound.Errorf("session %q not found", sessionID)
	}

	return s, nil
}

func (ss *SessionService) CreateSession(req dto.CreateSessionRequest) (dto.Session, error) {
	gameType := req.GameType
	if gameType == "" {
		gameType = dto.GAME_TYPE_WHODUNNIT
	}
	if gameType != dto.GAME_TYPE_WHODUNNIT {
		return dto.Session{}, game.ErrInvalidRequest.Errorf("unknown game type %q", gameType)
	}

	themeID := req.ThemeID
	if themeID == "" {
		themeID = ss.themes.DefaultID()
	}
	theme, ok := ss.themes.Get(themeID)
	if !ok {
		return dto.Session{}, game.ErrInvalidRequest.Errorf("unknown theme %q", themeID)
	}

	now := ss.clock()
	s := &session{
		id:         uuid.New().String()[:8],
		gameType:   gameType,
		theme:      theme,
		state:      dto.STATE_WAITING,
		createdAt:  now,
		lastActive: now,
		engine: game.NewEngine(
			ss.catalog,
			game.WithRand(ss.rng),
			game.WithClock(ss.clock),
			game.WithCharacters(theme),
		),
	}

	ss.state.mu.Lock()
	ss.state.sessions[s.id] = s
	ss.state.mu.Unlock()

	zap.S().Infof("会话 %s 已创建，主题 %s", s.id, themeID)

	return s.info(), nil
}

// ListSessions 按创建时间排列
func (ss *SessionService) ListSessions() []dto.Session {
	ss.state.mu.RLock()
	sessions := make([]*session, 0, len(ss.state.sessions))
	for _, s := range ss.state.sessions {
		sessions = append(sessions, s)
	}
	ss.state.mu.RUnlock()

	infos := make([]dto.Session, 0, len(sessions))
	for _, s := range sessions {
		s.mu.RLock()
		infos = append(infos, s.info())
		s.mu.RUnlock()
	}

	slices.SortFunc(infos, func(a, b dto.Session) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return infos
}

// JoinSession 加入等待中的会话；同一设备再次加入时视为重新加入
func (ss *SessionService) JoinSession(sessionID string, req dto.JoinSessionRequest) (dto.JoinSessionResponse, error) {
	s, err := ss.lookup(sessionID)
	if err != nil {
		return dto.JoinSessionResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != dto.STATE_WAITING {
		return dto.JoinSessionResponse{}, game.ErrSessionStarted.Errorf("cannot join session %q after it has started", s.id)
	}

	now := ss.clock()
	s.lastActive = now

	if m := s.memberByToken(req.DeviceToken); m != nil {
		if strings.TrimSpace(req.Name) != "" {
			m.name = normalizeName(req.Name)
		}
		m.connected = true

		zap.S().Infof("会话 %s 玩家 %s 重新加入", s.id, m.name)

		return dto.JoinSessionResponse{
			Player:      s.playerInfo(m),
			DeviceToken: m.deviceToken,
			Rejoined:    true,
			Session:     s.info(),
		}, nil
	}

	token := req.DeviceToken
	if token == "" {
		token = uuid.NewString()
	}

	m := &member{
		id:          uuid.NewString(),
		name:        normalizeName(req.Name),
		deviceToken: token,
		connected:   true,
		joinedAt:    now,
	}
	s.members = append(s.members, m)

	// 第一个加入的玩家成为主机
	if s.hostID == "" {
		s.hostID = m.id
	}

	zap.S().Infof("会话 %s 接纳玩家 %s", s.id, m.name)

	return dto.JoinSessionResponse{
		Player:      s.playerInfo(m),
		DeviceToken: token,
		Session:     s.info(),
	}, nil
}

// Reconnect 刷新页面后用设备令牌找回玩家
func (ss *SessionService) Reconnect(sessionID, deviceToken string) (dto.ReconnectResponse, error) {
	s, err := ss.lookup(sessionID)
	if err != nil {
		return dto.ReconnectResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.memberByToken(deviceToken)
	if m == nil {
		return dto.ReconnectResponse{}, game.ErrPlayerNotFound
	}

	m.connected = true
	s.lastActive = ss.clock()

	return dto.ReconnectResponse{
		Player:  s.playerInfo(m),
		Session: s.info(),
	}, nil
}

// StartSession 仅主机可以开始，开始时同步创建游戏状态
func (ss *SessionService) StartSession(sessionID, deviceToken string) (dto.Session, error) {
	s, err := ss.lookup(sessionID)
	if err != nil {
		return dto.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != dto.STATE_WAITING {
		return dto.Session{}, game.ErrSessionStarted
	}

	m := s.memberByToken(deviceToken)
	if m == nil {
		return dto.Session{}, game.ErrPlayerNotFound
	}
	if m.id != s.hostID {
		return dto.Session{}, game.ErrNotHost
	}

	if err := s.start(ss.clock()); err != nil {
		zap.S().Debugf("会话 %s 开始失败：%v", s.id, err)
		return dto.Session{}, err
	}

	zap.S().Infof("会话 %s 开始游戏，共 %d 名玩家", s.id, len(s.members))

	return s.info(), nil
}

// ViewSession 返回调用者视角的状态；开发模式下可以用玩家 ID 代替设备令牌
func (ss *SessionService) ViewSession(sessionID, deviceToken, devPlayerID string) (dto.ViewResponse, error) {
	s, err := ss.lookup(sessionID)
	if err != nil {
		return dto.ViewResponse{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.game == nil {
		return dto.ViewResponse{}, game.ErrGameNotStarted
	}

	viewerID := ""
	if m := s.memberByToken(deviceToken); m != nil {
		viewerID = m.id
	} else if ss.devTools && devPlayerID != "" {
		viewerID = devPlayerID
	}
	if viewerID == "" {
		return dto.ViewResponse{}, game.ErrPlayerNotFound
	}

	return s.view(viewerID)
}

// Advance 由主持人推进阶段，返回主持人视角的最新状态
func (ss *SessionService) Advance(sessionID, deviceToken string) (dto.ViewResponse, error) {
	s, err := ss.lookup(sessionID)
	if err != nil {
		return dto.ViewResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.activeMember(deviceToken)
	if err != nil {
		return dto.ViewResponse{}, err
	}

	if err := s.engine.Advance(s.game, m.id); err != nil {
		return dto.ViewResponse{}, err
	}
	s.afterMutation(ss.clock())

	return s.view(m.id)
}

func (ss *SessionService) Vote(sessionID string, req dto.VoteRequest) (game.VoteSnapshot, error) {
	s, err := ss.lookup(sessionID)
	if err != nil {
		return game.VoteSnapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.activeMember(req.DeviceToken)
	if err != nil {
		return game.VoteSnapshot{}, err
	}

	snap, err := s.engine.SubmitVote(s.game, m.id, req.TargetID)
	if err != nil {
		return game.VoteSnapshot{}, err
	}
	s.afterMutation(ss.clock())

	return snap, nil
}

func (ss *SessionService) NightAction(sessionID string, req dto.NightActionRequest) (game.ActionSnapshot, error) {
	s, err := ss.lookup(sessionID)
	if err != nil {
		return game.ActionSnapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.activeMember(req.DeviceToken)
	if err != nil {
		return game.ActionSnapshot{}, err
	}

	snap, err := s.engine.SubmitNightAction(s.game, m.id, req.Ability, req.TargetID)
	if err != nil {
		return game.ActionSnapshot{}, err
	}
	s.afterMutation(ss.clock())

	return snap, nil
}

// Narration 为当前阶段挑选一段主持人文案
func (ss *SessionService) Narration(sessionID string) (dto.NarrationResponse, error) {
	s, err := ss.lookup(sessionID)
	if err != nil {
		return dto.NarrationResponse{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.game == nil {
		return dto.NarrationResponse{}, game.ErrGameNotStarted
	}

	n, err := s.theme.Narrate(s.game.Phase, s.game.Round, ss.rng)
	if err != nil {
		zap.S().Errorf("会话 %s 挑选文案失败：%v", s.id, err)
		return dto.NarrationResponse{}, err
	}

	cursor := s.game.Cursor()
	return dto.NarrationResponse{
		Narration: n,
		Cursor:    cursor,
		CursorKey: cursor.Key(),
	}, nil
}

// DevQuickstart 创建会话、批量加入玩家并立即开始
func (ss *SessionService) DevQuickstart(req dto.QuickstartRequest) (dto.QuickstartResponse, error) {
	info, err := ss.CreateSession(dto.CreateSessionRequest{ThemeID: req.ThemeID})
	if err != nil {
		return dto.QuickstartResponse{}, err
	}

	total := quickstartCount(req.Count, ss.catalog.Rules().MinPlayers)

	seeded := make([]dto.SeededPlayer, 0, total)
	for i := range total {
		name := fmt.Sprintf("Player %d", i+1)
		if i < len(req.Names) && strings.TrimSpace(req.Names[i]) != "" {
			name = req.Names[i]
		}

		joined, err := ss.JoinSession(info.ID, dto.JoinSessionRequest{
			Name:        name,
			DeviceToken: "dev_" + uuid.NewString(),
		})
		if err != nil {
			return dto.QuickstartResponse{}, err
		}

		seeded = append(seeded, dto.SeededPlayer{
			ID:          joined.Player.ID,
			Name:        joined.Player.Name,
			DeviceToken: joined.DeviceToken,
			IsHost:      joined.Player.IsHost,
		})
	}

	if _, err := ss.StartSession(info.ID, seeded[0].DeviceToken); err != nil {
		return dto.QuickstartResponse{}, err
	}

	s, err := ss.lookup(info.ID)
	if err != nil {
		return dto.QuickstartResponse{}, err
	}

	s.mu.RLock()
	narratorID := s.game.NarratorID
	s.mu.RUnlock()

	zap.S().Infof("开发模式快速开始会话 %s，共 %d 名玩家", info.ID, total)

	return dto.QuickstartResponse{
		SessionID:  info.ID,
		ThemeID:    info.ThemeID,
		NarratorID: narratorID,
		Players:    seeded,
	}, nil
}
