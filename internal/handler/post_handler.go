package handler

import (
	"strconv"

	"social-system/internal/service"
	"social-system/pkg/jwt"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

// PostHandler 帖子与举报HTTP处理器
type PostHandler struct {
	postSvc *service.PostService
}

// NewPostHandler 创建PostHandler实例
func NewPostHandler(postSvc *service.PostService) *PostHandler {
	return &PostHandler{postSvc: postSvc}
}

// AddPostRequest 发帖请求
type AddPostRequest struct {
	PostType string `json:"post_type"`
	Text     string `json:"text"`
}

// AddPost 发帖
// POST /api/posts
func (h *PostHandler) AddPost(c *gin.Context) {
	var req AddPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	post, err := h.postSvc.AddPost(jwt.GetUserID(c), req.PostType, req.Text)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"id":          post.ID,
		"post_type":   post.PostType,
		"post_status": post.PostStatus,
	})
}

// GetPost 查询帖子
// GET /api/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := pathPostID(c)
	if !ok {
		return
	}

	view, err := h.postSvc.GetPost(jwt.GetUserID(c), postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if view == nil {
		response.NotFound(c, "帖子不存在")
		return
	}
	response.Success(c, view)
}

// FlagPost 举报帖子
// POST /api/posts/:id/flag
// 响应里的 post_status 是举报落库时刻的状态——归档由审核流水线
// 异步完成，举报方不会在本次响应里看到 ARCHIVED
func (h *PostHandler) FlagPost(c *gin.Context) {
	postID, ok := pathPostID(c)
	if !ok {
		return
	}

	post, err := h.postSvc.FlagPost(jwt.GetUserID(c), postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"id":          post.ID,
		"post_status": post.PostStatus,
		"flag_status": post.FlagStatus,
		"flag_count":  post.FlagCount,
	})
}

// pathPostID 解析路径中的帖子ID参数
func pathPostID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid post id")
		return 0, false
	}
	return uint(id), true
}
