package service

import (
	"crypto/subtle"
	"encoding/json"
	"time"

	"social-system/config"
	"social-system/internal/errs"
	"social-system/pkg/logger"
	"social-system/pkg/redis"
	"social-system/pkg/websocket"

	"go.uber.org/zap"
)

// 通知事件类型
const (
	NotificationFollowRequested = "FOLLOW_REQUESTED" // 收到关注请求
	NotificationFollowed        = "FOLLOWED"         // 被直接关注（公开账号）
	NotificationFollowAccepted  = "FOLLOW_ACCEPTED"  // 关注请求被接受
	NotificationPostArchived    = "POST_ARCHIVED"    // 帖子被审核归档
)

// NotificationEvent 通知事件
// UserID 是事件的目标用户，投递门只会把事件交给该用户本人的订阅
type NotificationEvent struct {
	Type    string `json:"type"`              // 事件类型
	UserID  uint   `json:"user_id"`           // 目标用户ID
	ActorID uint   `json:"actor_id"`          // 触发方用户ID
	PostID  uint   `json:"post_id,omitempty"` // 相关帖子ID
	Message string `json:"message"`           // 通知内容
}

// NotificationService 通知服务
// 触发门：Trigger 只能由后端内部组件调用；对外暴露的触发接口
// 必须先通过 AuthorizeTrigger，外部已认证调用者即使携带合法负载
// 也会被拒绝（基于调用方身份的白名单，而不是负载校验）
type NotificationService struct {
	manager        *websocket.Manager
	internalSecret string
}

// NewNotificationService 创建NotificationService实例
func NewNotificationService(manager *websocket.Manager, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		manager:        manager,
		internalSecret: cfg.InternalSecret,
	}
}

// AuthorizeTrigger 触发门校验
// 只有携带内部密钥的调用方可以通过；密钥未配置时一律拒绝
func (s *NotificationService) AuthorizeTrigger(callerSecret string) error {
	if s.internalSecret == "" || callerSecret == "" {
		return errs.AccessDenied("notification trigger is internal only")
	}
	if subtle.ConstantTimeCompare([]byte(callerSecret), []byte(s.internalSecret)) != 1 {
		return errs.AccessDenied("notification trigger is internal only")
	}
	return nil
}

// Trigger 触发通知事件（仅限内部组件调用）
// 目标用户有活跃通道时实时投递，否则落到Redis离线通知并累加角标
// 投递失败不向触发方返回错误：触发它的变更早已提交
func (s *NotificationService) Trigger(event *NotificationEvent) {
	data, err := json.Marshal(map[string]interface{}{
		"type":      event.Type,
		"user_id":   event.UserID,
		"actor_id":  event.ActorID,
		"post_id":   event.PostID,
		"message":   event.Message,
		"timestamp": time.Now().Unix(),
	})
	if err != nil {
		logger.Error("通知事件序列化失败", zap.Error(err))
		return
	}

	delivered := s.manager.Deliver(event.UserID, data)
	if delivered > 0 {
		return
	}

	// 目标用户不在线，落盘离线通知
	go func() {
		_ = redis.AddOfflineNotification(event.UserID, &redis.OfflineNotification{
			Type:      event.Type,
			UserID:    event.UserID,
			ActorID:   event.ActorID,
			PostID:    event.PostID,
			Message:   event.Message,
			CreatedAt: time.Now(),
		})
		_ = redis.IncrementBadgeCount(event.UserID)
	}()
}
