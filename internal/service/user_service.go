package service

import (
	"strconv"

	"social-system/config"
	"social-system/internal/errs"
	"social-system/internal/model"
	"social-system/internal/repository"
	"social-system/pkg/jwt"
	"social-system/pkg/logger"
	"social-system/pkg/password"

	"go.uber.org/zap"
)

// UserService 用户服务
// 所有返回他人资料的路径都必须经过 Resolve 脱敏
type UserService struct {
	userRepo *repository.UserRepository
	relRepo  *repository.RelationshipRepository
	jwtSvc   *jwt.JWTService
}

// NewUserService 创建UserService实例
func NewUserService(userRepo *repository.UserRepository, relRepo *repository.RelationshipRepository, jwtCfg config.JWTConfig) *UserService {
	return &UserService{
		userRepo: userRepo,
		relRepo:  relRepo,
		jwtSvc:   jwt.NewJWTService(jwtCfg),
	}
}

// UserDetails 可修改的资料字段
// 指针为nil表示本次不修改；指向空字符串表示清空该字段
type UserDetails struct {
	FullName    *string `json:"full_name"`
	Bio         *string `json:"bio"`
	PhotoURL    *string `json:"photo_url"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email"`
}

// MentalHealthSettings 心理健康相关开关，四项一起读写
type MentalHealthSettings struct {
	CommentsDisabled   bool `json:"comments_disabled"`
	LikesDisabled      bool `json:"likes_disabled"`
	SharingDisabled    bool `json:"sharing_disabled"`
	VerificationHidden bool `json:"verification_hidden"`
}

// Register 注册新用户
// 用户名/邮箱唯一，冲突返回 Conflict
func (s *UserService) Register(username, email, plainPassword string) (*model.User, error) {
	if username == "" || plainPassword == "" {
		return nil, errs.InvalidArgument("username and password are required")
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, errs.Internal("hash password", err)
	}

	user := &model.User{
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		PrivacyStatus: model.PrivacyStatusPublic,
		Status:        model.UserStatusActive,
		LanguageCode:  "en",
		ThemeCode:     "black.green",
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("用户注册成功", zap.Uint("user_id", user.ID), zap.String("username", username))
	return user, nil
}

// Login 用户登录，校验通过后签发JWT
// 用户名不存在与密码错误返回同样的错误，避免枚举账号
func (s *UserService) Login(identifier, plainPassword string) (string, *model.User, error) {
	user, err := s.userRepo.GetByUsernameOrEmail(identifier)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !password.Verify(plainPassword, user.PasswordHash) {
		return "", nil, errs.AccessDenied("invalid username or password")
	}
	if user.IsDisabled() {
		return "", nil, errs.AccessDenied("account is disabled")
	}

	token, err := s.jwtSvc.GenerateToken(strconv.FormatUint(uint64(user.ID), 10), map[string]interface{}{
		"username": user.Username,
	})
	if err != nil {
		return "", nil, errs.Internal("generate token", err)
	}
	return token, user, nil
}

// GetSelf 查询本人资料（SELF 视角，所有字段可见）
func (s *UserService) GetSelf(callerID uint) (*RedactedUser, error) {
	user, err := s.userRepo.GetByID(callerID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.NotFound("user %d not found", callerID)
	}
	return Resolve(user, model.RelationshipSelf, model.RelationshipSelf), nil
}

// GetUser 查询指定用户的脱敏资料
// 目标不存在时返回 (nil, nil)
func (s *UserService) GetUser(callerID, subjectID uint) (*RedactedUser, error) {
	subject, err := s.userRepo.GetByID(subjectID)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		return nil, nil
	}

	followedStatus, followerStatus, err := s.status(callerID, subjectID)
	if err != nil {
		return nil, err
	}
	return Resolve(subject, followedStatus, followerStatus), nil
}

// SetPrivacyStatus 切换账号隐私状态
// PRIVATE 切到 PUBLIC 时：全部待处理请求自动接受，全部已拒绝记录删除
// （账号公开后任何人都能直接关注，留着这些记录没有意义）
func (s *UserService) SetPrivacyStatus(callerID uint, privacyStatus string) (*model.User, error) {
	switch privacyStatus {
	case model.PrivacyStatusPublic, model.PrivacyStatusPrivate:
	default:
		return nil, errs.InvalidArgument("invalid privacy status %q", privacyStatus)
	}

	user, err := s.activeUser(callerID)
	if err != nil {
		return nil, err
	}

	if user.PrivacyStatus == model.PrivacyStatusPrivate && privacyStatus == model.PrivacyStatusPublic {
		if err := s.relRepo.AcceptAllRequested(callerID); err != nil {
			return nil, err
		}
		if err := s.relRepo.DeleteAllDenied(callerID); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.UpdateFields(callerID, map[string]interface{}{"privacy_status": privacyStatus}); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(callerID)
}

// SetDetails 修改资料字段
// 一个字段都没给时返回 InvalidArgument；给空字符串表示清空
func (s *UserService) SetDetails(callerID uint, details *UserDetails) (*model.User, error) {
	if _, err := s.activeUser(callerID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if details.FullName != nil {
		fields["full_name"] = *details.FullName
	}
	if details.Bio != nil {
		fields["bio"] = *details.Bio
	}
	if details.PhotoURL != nil {
		fields["photo_url"] = *details.PhotoURL
	}
	if details.PhoneNumber != nil {
		fields["phone_number"] = *details.PhoneNumber
	}
	if details.Email != nil {
		fields["email"] = *details.Email
	}
	if len(fields) == 0 {
		return nil, errs.InvalidArgument("no details provided")
	}

	if err := s.userRepo.UpdateFields(callerID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(callerID)
}

// SetMentalHealthSettings 修改心理健康开关（四项整体覆盖）
func (s *UserService) SetMentalHealthSettings(callerID uint, settings *MentalHealthSettings) (*model.User, error) {
	if _, err := s.activeUser(callerID); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"comments_disabled":   settings.CommentsDisabled,
		"likes_disabled":      settings.LikesDisabled,
		"sharing_disabled":    settings.SharingDisabled,
		"verification_hidden": settings.VerificationHidden,
	}
	if err := s.userRepo.UpdateFields(callerID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(callerID)
}

// SetLanguageCode 设置语言代码
func (s *UserService) SetLanguageCode(callerID uint, languageCode string) (*model.User, error) {
	if languageCode == "" {
		return nil, errs.InvalidArgument("language code is required")
	}
	return s.setField(callerID, "language_code", languageCode)
}

// SetThemeCode 设置主题代码
func (s *UserService) SetThemeCode(callerID uint, themeCode string) (*model.User, error) {
	if themeCode == "" {
		return nil, errs.InvalidArgument("theme code is required")
	}
	return s.setField(callerID, "theme_code", themeCode)
}

// SetAcceptedEULAVersion 记录已接受的EULA版本
func (s *UserService) SetAcceptedEULAVersion(callerID uint, version string) (*model.User, error) {
	if version == "" {
		return nil, errs.InvalidArgument("eula version is required")
	}
	return s.setField(callerID, "accepted_eula_version", version)
}

// SetAPNSToken 记录APNS设备令牌
func (s *UserService) SetAPNSToken(callerID uint, token string) (*model.User, error) {
	return s.setField(callerID, "apns_token", token)
}

// DisableUser 停用账号
// 账号从不删除，只标记为 DISABLED；停用后所有写操作都会被拒绝
func (s *UserService) DisableUser(callerID uint) error {
	user, err := s.userRepo.GetByID(callerID)
	if err != nil {
		return err
	}
	if user == nil {
		return errs.NotFound("user %d not found", callerID)
	}
	if user.IsDisabled() {
		return errs.InvalidState("account is already disabled")
	}

	if err := s.userRepo.UpdateFields(callerID, map[string]interface{}{"status": model.UserStatusDisabled}); err != nil {
		return err
	}
	logger.Info("账号已停用", zap.Uint("user_id", callerID))
	return nil
}

// setField 更新单个资料字段
func (s *UserService) setField(callerID uint, column, value string) (*model.User, error) {
	if _, err := s.activeUser(callerID); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateFields(callerID, map[string]interface{}{column: value}); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(callerID)
}

// activeUser 加载调用者并要求账号未停用
func (s *UserService) activeUser(callerID uint) (*model.User, error) {
	user, err := s.userRepo.GetByID(callerID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.NotFound("user %d not found", callerID)
	}
	if user.IsDisabled() {
		return nil, errs.AccessDenied("account is disabled")
	}
	return user, nil
}

// status 计算双向关系状态
func (s *UserService) status(viewerID, subjectID uint) (string, string, error) {
	if viewerID == subjectID {
		return model.RelationshipSelf, model.RelationshipSelf, nil
	}
	outgoing, err := s.relRepo.Get(viewerID, subjectID)
	if err != nil {
		return "", "", err
	}
	incoming, err := s.relRepo.Get(subjectID, viewerID)
	if err != nil {
		return "", "", err
	}
	followedStatus := model.RelationshipNotFollowing
	if outgoing != nil {
		followedStatus = outgoing.Status
	}
	followerStatus := model.RelationshipNotFollowing
	if incoming != nil {
		followerStatus = incoming.Status
	}
	return followedStatus, followerStatus, nil
}
