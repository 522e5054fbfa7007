package service

import (
	"strings"

	"social-system/internal/errs"
	"social-system/internal/model"
	"social-system/internal/repository"
)

// PostService 帖子与举报服务
// 举报成功只追加证据并标记 FLAGGED，归档由审核流水线异步完成，
// 举报请求自己的响应里看不到归档结果
type PostService struct {
	postRepo   *repository.PostRepository
	userRepo   *repository.UserRepository
	relRepo    *repository.RelationshipRepository
	moderation *ModerationService
}

// NewPostService 创建PostService实例
func NewPostService(postRepo *repository.PostRepository, userRepo *repository.UserRepository, relRepo *repository.RelationshipRepository, moderation *ModerationService) *PostService {
	return &PostService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		relRepo:    relRepo,
		moderation: moderation,
	}
}

// PostView 帖子视图，作者以脱敏视图嵌入
type PostView struct {
	ID         uint          `json:"id"`
	PostType   string        `json:"post_type"`
	Text       string        `json:"text"`
	PostStatus string        `json:"post_status"`
	FlagStatus string        `json:"flag_status"`
	FlagCount  int           `json:"flag_count"`
	IsVerified bool          `json:"is_verified"`
	Owner      *RedactedUser `json:"owner"`
}

// AddPost 发帖
// 文本帖创建即 COMPLETED；图片帖在媒体就绪前保持 PENDING
func (s *PostService) AddPost(callerID uint, postType, text string) (*model.Post, error) {
	caller, err := s.userRepo.GetByID(callerID)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, errs.NotFound("user %d not found", callerID)
	}
	if caller.IsDisabled() {
		return nil, errs.AccessDenied("account is disabled")
	}

	if postType == "" {
		postType = model.PostTypeText
	}
	switch postType {
	case model.PostTypeText, model.PostTypeImage:
	default:
		return nil, errs.InvalidArgument("invalid post type %q", postType)
	}
	if postType == model.PostTypeText && strings.TrimSpace(text) == "" {
		return nil, errs.InvalidArgument("text is required for text posts")
	}

	status := model.PostStatusPending
	if postType == model.PostTypeText {
		status = model.PostStatusCompleted
	}

	post := &model.Post{
		OwnerID:    callerID,
		PostType:   postType,
		Text:       text,
		PostStatus: status,
		FlagStatus: model.FlagStatusUnflagged,
	}
	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost 查询帖子，作者经过可见性脱敏后嵌入
// 帖子不存在时返回 (nil, nil)
func (s *PostService) GetPost(callerID, postID uint) (*PostView, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, nil
	}

	owner, err := s.userRepo.GetByID(post.OwnerID)
	if err != nil {
		return nil, err
	}

	view := &PostView{
		ID:         post.ID,
		PostType:   post.PostType,
		Text:       post.Text,
		PostStatus: post.PostStatus,
		FlagStatus: post.FlagStatus,
		FlagCount:  post.FlagCount,
		IsVerified: post.IsVerified,
	}

	// 作者视图必须走统一的脱敏入口
	if owner != nil {
		followedStatus, followerStatus, err := s.status(callerID, owner.ID)
		if err != nil {
			return nil, err
		}
		view.Owner = Resolve(owner, followedStatus, followerStatus)
	}

	return view, nil
}

// FlagPost 举报帖子
// 同一用户重复举报同一帖子为 Conflict（唯一键）；PENDING 帖子不可举报；
// 不能举报自己的帖子；已 ARCHIVED 的帖子仍然记录举报但不再转移状态
// 响应里 post_status 保持不变——归档是异步的
func (s *PostService) FlagPost(callerID, postID uint) (*model.Post, error) {
	caller, err := s.userRepo.GetByID(callerID)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, errs.NotFound("user %d not found", callerID)
	}
	if caller.IsDisabled() {
		return nil, errs.AccessDenied("account is disabled")
	}

	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errs.NotFound("post %d not found", postID)
	}
	if post.OwnerID == callerID {
		return nil, errs.InvalidState("cannot flag own post")
	}
	if post.PostStatus != model.PostStatusCompleted && post.PostStatus != model.PostStatusArchived {
		return nil, errs.InvalidState("cannot flag post with status %s", post.PostStatus)
	}

	// 追加举报证据，重复举报在唯一键上冲突
	if err := s.postRepo.CreateFlag(&model.Flag{PostID: postID, UserID: callerID}); err != nil {
		return nil, err
	}
	if err := s.postRepo.MarkFlagged(postID); err != nil {
		return nil, err
	}

	// 投递举报事件给审核流水线，归档与否不在本次响应中体现
	s.moderation.EnqueueFlag(postID)

	return s.postRepo.GetByID(postID)
}

// status 计算双向关系状态（与 RelationshipService.Status 一致）
func (s *PostService) status(viewerID, subjectID uint) (string, string, error) {
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
