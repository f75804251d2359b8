package dto

import "time"

// 会话中的玩家信息，加入会话后有效；不包含任何游戏内身份
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Connected bool      `json:"connected"`
	IsHost    bool      `json:"is_host"`
	JoinedAt  time.Time `json:"joined_at"`
}

// 开发工具批量创建的玩家，附带设备令牌以便模拟登录
type SeededPlayer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DeviceToken string `json:"device_token"`
	IsHost      bool   `json:"is_host"`
}
