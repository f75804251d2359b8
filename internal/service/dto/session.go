package dto

import "time"

const (
	STATE_WAITING = "waiting"
	STATE_ACTIVE  = "active"
	STATE_ENDED   = "ended"
)

const GAME_TYPE_WHODUNNIT = "whodunnit"

type Session struct {
	ID           string     `json:"id"`
	GameType     string     `json:"game_type"`
	ThemeID      string     `json:"theme_id"`
	State        string     `json:"state"`
	HostPlayerID string     `json:"host_player_id"`
	PlayerCount  int        `json:"player_count"`
	Players      []Player   `json:"players"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
}

type CreateSessionRequest struct {
	GameType string `json:"game_type"`
	ThemeID  string `json:"theme_id"`
}

// 设备令牌为空时由服务端生成，客户端需要保存返回的令牌
type JoinSessionRequest struct {
	Name        string `json:"name"`
	DeviceToken string `json:"device_token"`
}

type JoinSessionResponse struct {
	Player      Player  `json:"player"`
	DeviceToken string  `json:"device_token"`
	Rejoined    bool    `json:"rejoined"`
	Session     Session `json:"session"`
}

type ReconnectResponse struct {
	Player  Player  `json:"player"`
	Session Session `json:"session"`
}

type QuickstartRequest struct {
	ThemeID string   `json:"theme_id"`
	Count   int      `json:"count"`
	Names   []string `json:"names"`
}

type QuickstartResponse struct {
	SessionID  string         `json:"session_id"`
	ThemeID    string         `json:"theme_id"`
	NarratorID string         `json:"narrator_id"`
	Players    []SeededPlayer `json:"players"`
}
