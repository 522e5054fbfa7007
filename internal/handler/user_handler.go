package handler

import (
	"strconv"

	"social-system/internal/service"
	"social-system/pkg/jwt"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户相关HTTP处理器
type UserHandler struct {
	userSvc *service.UserService
}

// NewUserHandler 创建UserHandler实例
func NewUserHandler(userSvc *service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"` // 用户名或邮箱
	Password   string `json:"password" binding:"required"`
}

// Register 注册
// POST /api/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.userSvc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "注册成功", gin.H{
		"id":       user.ID,
		"username": user.Username,
	})
}

// Login 登录
// POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	token, user, err := h.userSvc.Login(req.Identifier, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "登录成功", gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

// GetSelf 查询本人资料
// GET /api/users/me
func (h *UserHandler) GetSelf(c *gin.Context) {
	view, err := h.userSvc.GetSelf(jwt.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, view)
}

// GetUser 查询指定用户的脱敏资料
// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	subjectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || subjectID == 0 {
		response.BadRequest(c, "invalid user id")
		return
	}

	view, err := h.userSvc.GetUser(jwt.GetUserID(c), uint(subjectID))
	if err != nil {
		response.FromError(c, err)
		return
	}
	// 目标不存在时返回null数据而不是错误
	response.Success(c, view)
}

// SetPrivacyStatusRequest 隐私状态切换请求
type SetPrivacyStatusRequest struct {
	PrivacyStatus string `json:"privacy_status" binding:"required"`
}

// SetPrivacyStatus 切换隐私状态
// PUT /api/users/me/privacy
func (h *UserHandler) SetPrivacyStatus(c *gin.Context) {
	var req SetPrivacyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.userSvc.SetPrivacyStatus(jwt.GetUserID(c), req.PrivacyStatus)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"privacy_status": user.PrivacyStatus})
}

// SetDetails 修改资料字段
// PUT /api/users/me/details
func (h *UserHandler) SetDetails(c *gin.Context) {
	var req service.UserDetails
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	callerID := jwt.GetUserID(c)
	if _, err := h.userSvc.SetDetails(callerID, &req); err != nil {
		response.FromError(c, err)
		return
	}
	view, err := h.userSvc.GetSelf(callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, view)
}

// SetMentalHealthSettings 修改心理健康开关
// PUT /api/users/me/mental-health
func (h *UserHandler) SetMentalHealthSettings(c *gin.Context) {
	var req service.MentalHealthSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if _, err := h.userSvc.SetMentalHealthSettings(jwt.GetUserID(c), &req); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, req)
}

// SetLanguageCode 设置语言代码
// PUT /api/users/me/language
func (h *UserHandler) SetLanguageCode(c *gin.Context) {
	var req struct {
		LanguageCode string `json:"language_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.userSvc.SetLanguageCode(jwt.GetUserID(c), req.LanguageCode)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"language_code": user.LanguageCode})
}

// SetThemeCode 设置主题代码
// PUT /api/users/me/theme
func (h *UserHandler) SetThemeCode(c *gin.Context) {
	var req struct {
		ThemeCode string `json:"theme_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.userSvc.SetThemeCode(jwt.GetUserID(c), req.ThemeCode)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"theme_code": user.ThemeCode})
}

// SetAcceptedEULAVersion 记录已接受的EULA版本
// PUT /api/users/me/eula
func (h *UserHandler) SetAcceptedEULAVersion(c *gin.Context) {
	var req struct {
		Version string `json:"version" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.userSvc.SetAcceptedEULAVersion(jwt.GetUserID(c), req.Version)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"accepted_eula_version": user.AcceptedEULAVersion})
}

// SetAPNSToken 记录APNS设备令牌
// PUT /api/users/me/apns-token
func (h *UserHandler) SetAPNSToken(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if _, err := h.userSvc.SetAPNSToken(jwt.GetUserID(c), req.Token); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已更新", nil)
}

// DisableSelf 停用本人账号
// POST /api/users/me/disable
func (h *UserHandler) DisableSelf(c *gin.Context) {
	if err := h.userSvc.DisableUser(jwt.GetUserID(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "账号已停用", nil)
}
