package service

import (
	"fmt"
	"testing"
	"time"

	"social-system/config"
	"social-system/internal/errs"
	"social-system/internal/model"
	"social-system/internal/repository"
	"social-system/pkg/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPostService(t *testing.T) (*PostService, *ModerationService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	notifier := NewNotificationService(websocket.NewManager(), config.NotificationConfig{})
	moderation := NewModerationService(postRepo, notifier, config.ModerationConfig{
		FlagThreshold:   3,
		TrustedFlaggers: []string{"real", "ian"},
		QueueSize:       16,
		RetryInterval:   10 * time.Millisecond,
	})
	moderation.Start()
	t.Cleanup(moderation.Stop)
	return NewPostService(postRepo, userRepo, relRepo, moderation), moderation, db
}

func TestAddPostText(t *testing.T) {
	svc, _, db := newPostService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)

	post, err := svc.AddPost(alice.ID, model.PostTypeText, "hello world")
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusCompleted, post.PostStatus)
	assert.Equal(t, model.FlagStatusUnflagged, post.FlagStatus)
}

func TestAddPostImagePending(t *testing.T) {
	svc, _, db := newPostService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)

	post, err := svc.AddPost(alice.ID, model.PostTypeImage, "caption")
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusPending, post.PostStatus)
}

func TestAddPostEmptyText(t *testing.T) {
	svc, _, db := newPostService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)

	_, err := svc.AddPost(alice.ID, model.PostTypeText, "   ")
	assert.True(t, errs.Is(err, errs.KindInvalidArgument))
}

func TestGetPostEmbedsRedactedOwner(t *testing.T) {
	svc, _, db := newPostService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPrivate)
	bob := newTestUser(t, db, "bob", model.PrivacyStatusPublic)
	require.NoError(t, db.Model(alice).Update("bio", "hello there").Error)

	post, err := svc.AddPost(alice.ID, model.PostTypeText, "hello")
	require.NoError(t, err)

	// 非关注者看私密作者：关注者才可见的字段为null
	view, err := svc.GetPost(bob.ID, post.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Owner)
	assert.Equal(t, "alice", view.Owner.Username)
	assert.Nil(t, view.Owner.Bio)

	// 本人看自己的帖子：全部可见
	view, err = svc.GetPost(alice.ID, post.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Owner.Bio)
	assert.Equal(t, "hello there", *view.Owner.Bio)
}

func TestGetPostMissing(t *testing.T) {
	svc, _, db := newPostService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)

	view, err := svc.GetPost(alice.ID, 9999)
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestFlagPostOwnPost(t *testing.T) {
	svc, _, db := newPostService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)

	post, err := svc.AddPost(alice.ID, model.PostTypeText, "hello")
	require.NoError(t, err)

	_, err = svc.FlagPost(alice.ID, post.ID)
	assert.True(t, errs.Is(err, errs.KindInvalidState))
}

func TestFlagPostPending(t *testing.T) {
	svc, _, db := newPostService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)
	bob := newTestUser(t, db, "bob", model.PrivacyStatusPublic)

	post, err := svc.AddPost(alice.ID, model.PostTypeImage, "caption")
	require.NoError(t, err)

	_, err = svc.FlagPost(bob.ID, post.ID)
	assert.True(t, errs.Is(err, errs.KindInvalidState))
}

func TestFlagPostDuplicate(t *testing.T) {
	svc, _, db := newPostService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)
	bob := newTestUser(t, db, "bob", model.PrivacyStatusPublic)

	post, err := svc.AddPost(alice.ID, model.PostTypeText, "hello")
	require.NoError(t, err)

	_, err = svc.FlagPost(bob.ID, post.ID)
	require.NoError(t, err)

	_, err = svc.FlagPost(bob.ID, post.ID)
	assert.True(t, errs.Is(err, errs.KindConflict))
}

func TestFlagPostResponseNotArchived(t *testing.T) {
	svc, _, db := newPostService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)
	bob := newTestUser(t, db, "bob", model.PrivacyStatusPublic)

	post, err := svc.AddPost(alice.ID, model.PostTypeText, "hello")
	require.NoError(t, err)

	// 单次普通举报不会触发归档，响应里保持 COMPLETED
	flagged, err := svc.FlagPost(bob.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusCompleted, flagged.PostStatus)
	assert.Equal(t, model.FlagStatusFlagged, flagged.FlagStatus)
	assert.Equal(t, 1, flagged.FlagCount)
}

func TestModerationThresholdArchives(t *testing.T) {
	svc, _, db := newPostService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)

	post, err := svc.AddPost(alice.ID, model.PostTypeText, "hello")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		flagger := newTestUser(t, db, fmt.Sprintf("flagger%d", i), model.PrivacyStatusPublic)
		_, err := svc.FlagPost(flagger.ID, post.ID)
		require.NoError(t, err)
	}

	// 归档异步发生
	require.Eventually(t, func() bool {
		var p model.Post
		if err := db.First(&p, post.ID).Error; err != nil {
			return false
		}
		return p.PostStatus == model.PostStatusArchived
	}, 2*time.Second, 10*time.Millisecond)
}

func TestModerationBelowThresholdKeepsPost(t *testing.T) {
	svc, _, db := newPostService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)
	bob := newTestUser(t, db, "bob", model.PrivacyStatusPublic)

	post, err := svc.AddPost(alice.ID, model.PostTypeText, "hello")
	require.NoError(t, err)

	_, err = svc.FlagPost(bob.ID, post.ID)
	require.NoError(t, err)

	// 给worker留出评估时间，帖子不应被归档
	time.Sleep(100 * time.Millisecond)
	var p model.Post
	require.NoError(t, db.First(&p, post.ID).Error)
	assert.Equal(t, model.PostStatusCompleted, p.PostStatus)
}

func TestModerationTrustedFlaggerArchives(t *testing.T) {
	svc, _, db := newPostService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)
	trusted := newTestUser(t, db, "real", model.PrivacyStatusPublic)

	post, err := svc.AddPost(alice.ID, model.PostTypeText, "hello")
	require.NoError(t, err)

	// 受信审核员单次举报即可触发归档
	_, err = svc.FlagPost(trusted.ID, post.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		var p model.Post
		if err := db.First(&p, post.ID).Error; err != nil {
			return false
		}
		return p.PostStatus == model.PostStatusArchived
	}, 2*time.Second, 10*time.Millisecond)
}

func TestModerationSweepRecoversLostEvents(t *testing.T) {
	db := newTestDB(t)
	postRepo := repository.NewPostRepository(db)
	notifier := NewNotificationService(websocket.NewManager(), config.NotificationConfig{})
	moderation := NewModerationService(postRepo, notifier, config.ModerationConfig{
		FlagThreshold:   3,
		TrustedFlaggers: []string{"real", "ian"},
		QueueSize:       4,
		RetryInterval:   10 * time.Millisecond,
		SweepInterval:   20 * time.Millisecond,
	})

	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)
	post := &model.Post{
		OwnerID:    alice.ID,
		PostType:   model.PostTypeText,
		Text:       "hello",
		PostStatus: model.PostStatusCompleted,
		FlagStatus: model.FlagStatusUnflagged,
	}
	require.NoError(t, postRepo.Create(post))

	// 三条举报直接落库，事件全部丢失（worker未启动时无人消费）
	for i := 0; i < 3; i++ {
		flagger := newTestUser(t, db, fmt.Sprintf("flagger%d", i), model.PrivacyStatusPublic)
		require.NoError(t, postRepo.CreateFlag(&model.Flag{PostID: post.ID, UserID: flagger.ID}))
		require.NoError(t, postRepo.MarkFlagged(post.ID))
	}

	// 兜底重扫独立于事件队列完成归档
	moderation.Start()
	t.Cleanup(moderation.Stop)

	require.Eventually(t, func() bool {
		var p model.Post
		if err := db.First(&p, post.ID).Error; err != nil {
			return false
		}
		return p.PostStatus == model.PostStatusArchived
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFlagArchivedPostStillRecorded(t *testing.T) {
	svc, _, db := newPostService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)
	trusted := newTestUser(t, db, "ian", model.PrivacyStatusPublic)
	bob := newTestUser(t, db, "bob", model.PrivacyStatusPublic)

	post, err := svc.AddPost(alice.ID, model.PostTypeText, "hello")
	require.NoError(t, err)

	_, err = svc.FlagPost(trusted.ID, post.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		var p model.Post
		if err := db.First(&p, post.ID).Error; err != nil {
			return false
		}
		return p.PostStatus == model.PostStatusArchived
	}, 2*time.Second, 10*time.Millisecond)

	// 已归档的帖子仍然可以举报，状态保持 ARCHIVED
	flagged, err := svc.FlagPost(bob.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusArchived, flagged.PostStatus)
	assert.Equal(t, 2, flagged.FlagCount)
}
