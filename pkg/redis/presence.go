package redis

import (
	"encoding/json"
	"fmt"
	"time"
)

// PresenceData 订阅在线状态数据
type PresenceData struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Status    string    `json:"status"` // online/offline
	LastSeen  time.Time `json:"last_seen"`
	Connected bool      `json:"connected"` // 是否有活跃订阅通道
}

// 在线状态相关常量
const (
	PresenceKeyPrefix = "social:presence:user:" // 用户在线状态key前缀
	OnlineUsersKey    = "social:online:users"   // 在线用户集合key
	PresenceTTL       = 2 * time.Minute         // 在线状态TTL（2倍心跳周期）
)

// SetUserPresence 设置用户订阅在线状态
func SetUserPresence(userID uint, username string, status string) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	key := fmt.Sprintf("%s%d", PresenceKeyPrefix, userID)

	presence := PresenceData{
		UserID:    userID,
		Username:  username,
		Status:    status,
		LastSeen:  time.Now(),
		Connected: status == "online",
	}

	data, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("序列化在线状态失败: %w", err)
	}

	// 设置用户状态，带TTL
	if err := Set(key, data, PresenceTTL); err != nil {
		return fmt.Errorf("设置用户在线状态失败: %w", err)
	}

	// 更新在线用户集合
	if status == "online" {
		err = client.SAdd(ctx, OnlineUsersKey, userID).Err()
	} else {
		err = client.SRem(ctx, OnlineUsersKey, userID).Err()
	}

	if err != nil {
		return fmt.Errorf("更新在线用户集合失败: %w", err)
	}

	return nil
}

// RefreshUserPresence 刷新用户在线状态TTL（心跳时调用）
func RefreshUserPresence(userID uint) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	key := fmt.Sprintf("%s%d", PresenceKeyPrefix, userID)
	return client.Expire(ctx, key, PresenceTTL).Err()
}

// GetUserPresence 获取用户在线状态
func GetUserPresence(userID uint) (*PresenceData, error) {
	if client == nil {
		return nil, fmt.Errorf("redis客户端未初始化")
	}

	key := fmt.Sprintf("%s%d", PresenceKeyPrefix, userID)

	data, err := Get(key)
	if err != nil {
		return nil, fmt.Errorf("获取用户在线状态失败: %w", err)
	}

	var presence PresenceData
	if err := json.Unmarshal([]byte(data), &presence); err != nil {
		return nil, fmt.Errorf("反序列化在线状态失败: %w", err)
	}

	return &presence, nil
}

// IsUserOnline 判断用户是否有活跃订阅
func IsUserOnline(userID uint) (bool, error) {
	if client == nil {
		return false, fmt.Errorf("redis客户端未初始化")
	}

	exists, err := client.SIsMember(ctx, OnlineUsersKey, userID).Result()
	if err != nil {
		return false, fmt.Errorf("检查在线状态失败: %w", err)
	}

	return exists, nil
}
