package service

import (
	"social-system/internal/errs"
	"social-system/internal/model"
	"social-system/internal/repository"
)

// RelationshipService 关注关系状态机
// 状态集合：NOT_FOLLOWING（无记录）/ REQUESTED / FOLLOWING / DENIED
// 只有被关注方可以 accept/deny，只有关注方可以 request/unfollow
// A关注B 和 B关注A 是两条互相独立的记录
type RelationshipService struct {
	relRepo  *repository.RelationshipRepository
	userRepo *repository.UserRepository
	notifier *NotificationService
}

// NewRelationshipService 创建RelationshipService实例
func NewRelationshipService(relRepo *repository.RelationshipRepository, userRepo *repository.UserRepository, notifier *NotificationService) *RelationshipService {
	return &RelationshipService{relRepo: relRepo, userRepo: userRepo, notifier: notifier}
}

// RequestFollow 发起关注请求
// 目标为 PUBLIC 时直接进入 FOLLOWING，PRIVATE 时进入 REQUESTED
// 已有 REQUESTED/FOLLOWING 记录、自己关注自己、任一账号已停用均为 InvalidState
// DENIED 记录按全新请求处理（覆盖原记录）
// 并发重复请求时唯一键冲突让竞争失败方收到 Conflict
func (s *RelationshipService) RequestFollow(followerID, followedID uint) (*model.Relationship, error) {
	if followerID == followedID {
		return nil, errs.InvalidState("cannot follow yourself")
	}

	follower, err := s.userRepo.GetByID(followerID)
	if err != nil {
		return nil, err
	}
	if follower == nil {
		return nil, errs.NotFound("user %d not found", followerID)
	}
	followed, err := s.userRepo.GetByID(followedID)
	if err != nil {
		return nil, err
	}
	if followed == nil {
		return nil, errs.NotFound("user %d not found", followedID)
	}
	if follower.IsDisabled() || followed.IsDisabled() {
		return nil, errs.InvalidState("account is disabled")
	}

	// 公开账号直接关注成功，私密账号进入待处理
	targetStatus := model.RelationshipRequested
	if followed.IsPublic() {
		targetStatus = model.RelationshipFollowing
	}

	existing, err := s.relRepo.Get(followerID, followedID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status != model.RelationshipDenied {
			return nil, errs.InvalidState("relationship already %s", existing.Status)
		}
		// DENIED 可以重新请求：覆盖原记录
		ok, err := s.relRepo.UpdateStatusFrom(followerID, followedID, model.RelationshipDenied, targetStatus)
		if err != nil {
			return nil, err
		}
		if !ok {
			// 并发下状态已被别的请求改走
			return nil, errs.Conflict("relationship changed concurrently")
		}
	} else {
		rel := &model.Relationship{
			FollowerID: followerID,
			FollowedID: followedID,
			Status:     targetStatus,
		}
		if err := s.relRepo.Create(rel); err != nil {
			return nil, err
		}
	}

	rel, err := s.relRepo.Get(followerID, followedID)
	if err != nil {
		return nil, err
	}

	// 通知被关注方
	switch targetStatus {
	case model.RelationshipRequested:
		s.notifier.Trigger(&NotificationEvent{
			Type:    NotificationFollowRequested,
			UserID:  followedID,
			ActorID: followerID,
			Message: follower.Username + " 请求关注你",
		})
	case model.RelationshipFollowing:
		s.notifier.Trigger(&NotificationEvent{
			Type:    NotificationFollowed,
			UserID:  followedID,
			ActorID: followerID,
			Message: follower.Username + " 关注了你",
		})
	}

	return rel, nil
}

// AcceptRequest 接受关注请求（只有被关注方可以调用）
// 只能从 REQUESTED 转移到 FOLLOWING，其余状态一律 InvalidState
func (s *RelationshipService) AcceptRequest(followedID, followerID uint) (*model.Relationship, error) {
	followed, err := s.userRepo.GetByID(followedID)
	if err != nil {
		return nil, err
	}
	if followed == nil {
		return nil, errs.NotFound("user %d not found", followedID)
	}
	if followed.IsDisabled() {
		return nil, errs.AccessDenied("account is disabled")
	}

	ok, err := s.relRepo.UpdateStatusFrom(followerID, followedID, model.RelationshipRequested, model.RelationshipFollowing)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.InvalidState("no pending follow request from user %d", followerID)
	}

	// 通知关注方请求已被接受
	s.notifier.Trigger(&NotificationEvent{
		Type:    NotificationFollowAccepted,
		UserID:  followerID,
		ActorID: followedID,
		Message: followed.Username + " 接受了你的关注请求",
	})

	return s.relRepo.Get(followerID, followedID)
}

// DenyRequest 拒绝关注请求（只有被关注方可以调用）
// 只能从 REQUESTED 转移到 DENIED；之后关注方可以重新发起请求
func (s *RelationshipService) DenyRequest(followedID, followerID uint) (*model.Relationship, error) {
	followed, err := s.userRepo.GetByID(followedID)
	if err != nil {
		return nil, err
	}
	if followed == nil {
		return nil, errs.NotFound("user %d not found", followedID)
	}
	if followed.IsDisabled() {
		return nil, errs.AccessDenied("account is disabled")
	}

	ok, err := s.relRepo.UpdateStatusFrom(followerID, followedID, model.RelationshipRequested, model.RelationshipDenied)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.InvalidState("no pending follow request from user %d", followerID)
	}

	return s.relRepo.Get(followerID, followedID)
}

// Unfollow 取消关注（只有关注方可以调用）
// FOLLOWING 或 REQUESTED（即撤回请求）都允许，删除记录回到 NOT_FOLLOWING
func (s *RelationshipService) Unfollow(followerID, followedID uint) error {
	follower, err := s.userRepo.GetByID(followerID)
	if err != nil {
		return err
	}
	if follower == nil {
		return errs.NotFound("user %d not found", followerID)
	}
	if follower.IsDisabled() {
		return errs.AccessDenied("account is disabled")
	}

	ok, err := s.relRepo.Delete(followerID, followedID, model.RelationshipFollowing, model.RelationshipRequested)
	if err != nil {
		return err
	}
	if !ok {
		return errs.InvalidState("not following user %d", followedID)
	}
	return nil
}

// Status 查询 viewer 对 subject 的双向关系状态
// viewer == subject 时两个方向都是 SELF；无记录即 NOT_FOLLOWING
func (s *RelationshipService) Status(viewerID, subjectID uint) (followedStatus, followerStatus string, err error) {
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

	followedStatus = model.RelationshipNotFollowing
	if outgoing != nil {
		followedStatus = outgoing.Status
	}
	followerStatus = model.RelationshipNotFollowing
	if incoming != nil {
		followerStatus = incoming.Status
	}
	return followedStatus, followerStatus, nil
}

// ListFollowed 列出 caller 发起的指定状态的关系对应的用户
// status 为空时默认 FOLLOWING
func (s *RelationshipService) ListFollowed(callerID uint, status string) ([]*model.User, error) {
	if status == "" {
		status = model.RelationshipFollowing
	}
	switch status {
	case model.RelationshipFollowing, model.RelationshipRequested, model.RelationshipDenied:
	default:
		return nil, errs.InvalidArgument("invalid follow status %q", status)
	}

	rels, err := s.relRepo.ListByFollower(callerID, status)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(rels))
	for _, rel := range rels {
		ids = append(ids, rel.FollowedID)
	}
	return s.userRepo.GetByIDs(ids)
}

// ListFollowRequests 列出指向 caller 的待处理关注请求对应的用户
func (s *RelationshipService) ListFollowRequests(callerID uint) ([]*model.User, error) {
	rels, err := s.relRepo.ListByFollowed(callerID, model.RelationshipRequested)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(rels))
	for _, rel := range rels {
		ids = append(ids, rel.FollowerID)
	}
	return s.userRepo.GetByIDs(ids)
}
