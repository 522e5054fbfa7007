package handler

import (
	"strconv"

	"social-system/internal/model"
	"social-system/internal/service"
	"social-system/pkg/jwt"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

// RelationshipHandler 关注关系HTTP处理器
// 调用方身份一律来自JWT：request/unfollow 以调用方为关注方，
// accept/deny 以调用方为被关注方，身份不从请求体里取
type RelationshipHandler struct {
	relSvc  *service.RelationshipService
	userSvc *service.UserService
}

// NewRelationshipHandler 创建RelationshipHandler实例
func NewRelationshipHandler(relSvc *service.RelationshipService, userSvc *service.UserService) *RelationshipHandler {
	return &RelationshipHandler{relSvc: relSvc, userSvc: userSvc}
}

// RequestFollow 发起关注请求
// POST /api/follows/:id
func (h *RelationshipHandler) RequestFollow(c *gin.Context) {
	followedID, ok := pathUserID(c)
	if !ok {
		return
	}

	rel, err := h.relSvc.RequestFollow(jwt.GetUserID(c), followedID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"followed_status": rel.Status})
}

// AcceptRequest 接受关注请求
// POST /api/follow-requests/:id/accept
func (h *RelationshipHandler) AcceptRequest(c *gin.Context) {
	followerID, ok := pathUserID(c)
	if !ok {
		return
	}

	rel, err := h.relSvc.AcceptRequest(jwt.GetUserID(c), followerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"follower_status": rel.Status})
}

// DenyRequest 拒绝关注请求
// POST /api/follow-requests/:id/deny
func (h *RelationshipHandler) DenyRequest(c *gin.Context) {
	followerID, ok := pathUserID(c)
	if !ok {
		return
	}

	rel, err := h.relSvc.DenyRequest(jwt.GetUserID(c), followerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"follower_status": rel.Status})
}

// Unfollow 取消关注（或撤回待处理请求）
// DELETE /api/follows/:id
func (h *RelationshipHandler) Unfollow(c *gin.Context) {
	followedID, ok := pathUserID(c)
	if !ok {
		return
	}

	if err := h.relSvc.Unfollow(jwt.GetUserID(c), followedID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"followed_status": model.RelationshipNotFollowing})
}

// ListFollowed 列出本人发起的关系对应的用户
// GET /api/follows?status=FOLLOWING
func (h *RelationshipHandler) ListFollowed(c *gin.Context) {
	callerID := jwt.GetUserID(c)
	users, err := h.relSvc.ListFollowed(callerID, c.Query("status"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, h.redactAll(callerID, users))
}

// ListFollowRequests 列出指向本人的待处理关注请求
// GET /api/follow-requests
func (h *RelationshipHandler) ListFollowRequests(c *gin.Context) {
	callerID := jwt.GetUserID(c)
	users, err := h.relSvc.ListFollowRequests(callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, h.redactAll(callerID, users))
}

// redactAll 批量脱敏用户列表
func (h *RelationshipHandler) redactAll(callerID uint, users []*model.User) []*service.RedactedUser {
	views := make([]*service.RedactedUser, 0, len(users))
	for _, u := range users {
		view, err := h.userSvc.GetUser(callerID, u.ID)
		if err != nil || view == nil {
			continue
		}
		views = append(views, view)
	}
	return views
}

// pathUserID 解析路径中的用户ID参数
func pathUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid user id")
		return 0, false
	}
	return uint(id), true
}
