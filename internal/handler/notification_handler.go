package handler

import (
	"strconv"

	"social-system/internal/service"
	"social-system/pkg/jwt"
	"social-system/pkg/redis"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

// InternalAuthHeader 内部调用方携带共享密钥的请求头
const InternalAuthHeader = "X-Internal-Auth"

// NotificationHandler 通知HTTP处理器
// Trigger 是触发门的对外入口：即使请求携带合法JWT，只要缺少
// 内部密钥就会被拒绝——触发权看的是调用方身份，不是负载内容
type NotificationHandler struct {
	notifSvc *service.NotificationService
}

// NewNotificationHandler 创建NotificationHandler实例
func NewNotificationHandler(notifSvc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc}
}

// Trigger 触发通知事件（仅限内部服务调用）
// POST /api/internal/notifications
func (h *NotificationHandler) Trigger(c *gin.Context) {
	if err := h.notifSvc.AuthorizeTrigger(c.GetHeader(InternalAuthHeader)); err != nil {
		response.FromError(c, err)
		return
	}

	var event service.NotificationEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}
	if event.Type == "" || event.UserID == 0 {
		response.BadRequest(c, "type and user_id are required")
		return
	}

	h.notifSvc.Trigger(&event)
	response.SuccessWithMessage(c, "已触发", nil)
}

// GetBadgeCount 查询本人未读角标数和积压的离线通知数
// GET /api/notifications/badge
func (h *NotificationHandler) GetBadgeCount(c *gin.Context) {
	userID := jwt.GetUserID(c)
	count, err := redis.GetBadgeCount(userID)
	if err != nil {
		response.InternalError(c, "查询角标失败")
		return
	}
	offline, err := redis.GetOfflineNotificationCount(userID)
	if err != nil {
		response.InternalError(c, "查询离线通知数量失败")
		return
	}
	response.Success(c, gin.H{
		"badge_count":   count,
		"offline_count": offline,
	})
}

// GetPresence 查询指定用户的订阅在线状态
// GET /api/notifications/presence/:id
func (h *NotificationHandler) GetPresence(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || userID == 0 {
		response.BadRequest(c, "invalid user id")
		return
	}

	online, err := redis.IsUserOnline(uint(userID))
	if err != nil {
		response.InternalError(c, "查询在线状态失败")
		return
	}

	result := gin.H{"user_id": uint(userID), "online": online}
	if presence, err := redis.GetUserPresence(uint(userID)); err == nil {
		result["last_seen"] = presence.LastSeen
	}
	response.Success(c, result)
}

// ListOfflineNotifications 查询本人离线通知
// GET /api/notifications/offline
func (h *NotificationHandler) ListOfflineNotifications(c *gin.Context) {
	notifications, err := redis.GetOfflineNotifications(jwt.GetUserID(c), 50)
	if err != nil {
		response.InternalError(c, "查询离线通知失败")
		return
	}
	response.Success(c, notifications)
}

// ClearOfflineNotifications 清空本人离线通知并重置角标
// DELETE /api/notifications/offline
func (h *NotificationHandler) ClearOfflineNotifications(c *gin.Context) {
	userID := jwt.GetUserID(c)
	_ = redis.ClearOfflineNotifications(userID)
	_ = redis.ResetBadgeCount(userID)
	response.SuccessWithMessage(c, "已清空", nil)
}
