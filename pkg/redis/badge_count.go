package redis

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 通知角标计数相关常量
const (
	BadgeCountKeyPrefix = "social:badge:" // 通知角标计数key前缀
	BadgeCountTTL       = 24 * time.Hour  // 角标计数过期时间
)

// IncrementBadgeCount 增加用户未读通知角标计数
func IncrementBadgeCount(userID uint) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	key := fmt.Sprintf("%s%d", BadgeCountKeyPrefix, userID)

	// 使用Redis INCR命令原子性增加计数
	if err := client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("增加角标计数失败: %w", err)
	}

	// 设置TTL，避免计数无限增长
	if err := client.Expire(ctx, key, BadgeCountTTL).Err(); err != nil {
		return fmt.Errorf("设置角标计数TTL失败: %w", err)
	}

	return nil
}

// GetBadgeCount 获取用户未读通知角标计数
func GetBadgeCount(userID uint) (int64, error) {
	if client == nil {
		return 0, fmt.Errorf("redis客户端未初始化")
	}

	key := fmt.Sprintf("%s%d", BadgeCountKeyPrefix, userID)

	count, err := client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("获取角标计数失败: %w", err)
	}

	return count, nil
}

// ResetBadgeCount 清零用户角标计数（订阅建立并补推完成后调用）
func ResetBadgeCount(userID uint) error {
	if client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	key := fmt.Sprintf("%s%d", BadgeCountKeyPrefix, userID)

	if err := Del(key); err != nil {
		return fmt.Errorf("清零角标计数失败: %w", err)
	}

	return nil
}
