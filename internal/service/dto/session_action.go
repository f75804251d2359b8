package dto

import (
	"whodunnit-be/internal/service/game"
	"whodunnit-be/internal/service/narration"
)

// 所有游戏内操作都通过设备令牌识别调用者，令牌也可以放在请求头中
type ActorRequest struct {
	DeviceToken string `json:"device_token"`
}

type VoteRequest struct {
	DeviceToken string `json:"device_token"`
	// 空字符串或 "abstain" 表示弃权
	TargetID string `json:"target_id"`
}

type NightActionRequest struct {
	DeviceToken string       `json:"device_token"`
	Ability     game.Ability `json:"ability"`
	TargetID    string       `json:"target_id"`
}

// ViewResponse 是某个玩家视角下的完整状态
type ViewResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
	GameType  string `json:"game_type"`
	ThemeID   string `json:"theme_id"`

	game.ViewerState

	RoleBrief *narration.Brief `json:"role_brief,omitempty"`
}

type NarrationResponse struct {
	narration.Narration

	Cursor    game.NarrationCursor `json:"cursor"`
	CursorKey string               `json:"cursor_key"`
}
