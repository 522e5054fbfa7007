package redis

import (
	"encoding/json"
	"fmt"
	"time"
)

// OfflineNotification 离线通知
// 通道归属用户不在线时，通知先落到Redis，等下次订阅建立后补推
type OfflineNotification struct {
	Type      string    `json:"type"`              // 通知类型
	UserID    uint      `json:"user_id"`           // 通知目标用户ID
	ActorID   uint      `json:"actor_id"`          // 触发方用户ID
	PostID    uint      `json:"post_id,omitempty"` // 相关帖子ID
	Message   string    `json:"message"`           // 通知内容
	CreatedAt time.Time `json:"created_at"`        // 产生时间
}

// 离线通知相关常量
const (
	OfflineNotificationsKeyPrefix = "social:offline:"   // 离线通知key前缀
	OfflineNotificationsTTL       = 7 * 24 * time.Hour  // 7天过期
	MaxOfflineNotifications       = 100                 // 每用户最多保留100条
)

// AddOfflineNotification 添加离线通知
func AddOfflineNotification(userID uint, notification *OfflineNotification) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	key := fmt.Sprintf("%s%d", OfflineNotificationsKeyPrefix, userID)

	// 将通知序列化为JSON
	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("序列化离线通知失败: %w", err)
	}

	// 使用LPUSH添加到列表头部（最新的通知在前面）
	if err := client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("添加离线通知失败: %w", err)
	}

	// 设置TTL
	if err := client.Expire(ctx, key, OfflineNotificationsTTL).Err(); err != nil {
		return fmt.Errorf("设置离线通知TTL失败: %w", err)
	}

	// 限制离线通知数量
	if err := client.LTrim(ctx, key, 0, MaxOfflineNotifications-1).Err(); err != nil {
		return fmt.Errorf("限制离线通知数量失败: %w", err)
	}

	return nil
}

// GetOfflineNotifications 获取用户的离线通知
func GetOfflineNotifications(userID uint, limit int) ([]*OfflineNotification, error) {
	if client == nil {
		return nil, fmt.Errorf("redis客户端未初始化")
	}

	key := fmt.Sprintf("%s%d", OfflineNotificationsKeyPrefix, userID)

	// 从列表头部获取指定数量的通知
	results, err := client.LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("获取离线通知失败: %w", err)
	}

	var notifications []*OfflineNotification
	for _, result := range results {
		var n OfflineNotification
		if err := json.Unmarshal([]byte(result), &n); err != nil {
			continue // 跳过无法解析的通知
		}
		notifications = append(notifications, &n)
	}

	return notifications, nil
}

// ClearOfflineNotifications 清空用户的离线通知
func ClearOfflineNotifications(userID uint) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	key := fmt.Sprintf("%s%d", OfflineNotificationsKeyPrefix, userID)

	if err := Del(key); err != nil {
		return fmt.Errorf("清空离线通知失败: %w", err)
	}

	return nil
}

// GetOfflineNotificationCount 获取用户离线通知数量
func GetOfflineNotificationCount(userID uint) (int64, error) {
	if client == nil {
		return 0, fmt.Errorf("redis客户端未初始化")
	}

	key := fmt.Sprintf("%s%d", OfflineNotificationsKeyPrefix, userID)

	count, err := client.LLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("获取离线通知数量失败: %w", err)
	}

	return count, nil
}
