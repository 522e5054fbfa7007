package service

import (
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

func newUserService(t *testing.T) (*UserService, *RelationshipService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	jwtCfg := config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour, Issuer: "test"}
	notifier := NewNotificationService(websocket.NewManager(), config.NotificationConfig{})
	return NewUserService(userRepo, relRepo, jwtCfg),
		NewRelationshipService(relRepo, userRepo, notifier), db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newUserService(t)

	user, err := svc.Register("alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, model.PrivacyStatusPublic, user.PrivacyStatus)
	assert.Equal(t, "en", user.LanguageCode)
	assert.Equal(t, "black.green", user.ThemeCode)

	token, logged, err := svc.Login("alice", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)

	// 邮箱同样可以登录
	_, _, err = svc.Login("alice@example.com", "secret123")
	require.NoError(t, err)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := newUserService(t)

	_, err := svc.Register("alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Register("alice", "other@example.com", "secret123")
	assert.True(t, errs.Is(err, errs.KindConflict))
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newUserService(t)

	_, err := svc.Register("alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	// 密码错误和用户不存在返回同类错误
	_, _, err = svc.Login("alice", "wrong")
	assert.True(t, errs.Is(err, errs.KindAccessDenied))
	_, _, err = svc.Login("nobody", "secret123")
	assert.True(t, errs.Is(err, errs.KindAccessDenied))
}

func TestGetUserRedaction(t *testing.T) {
	svc, relSvc, db := newUserService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPrivate)
	bob := newTestUser(t, db, "bob", model.PrivacyStatusPublic)
	require.NoError(t, db.Model(alice).Update("bio", "hello there").Error)

	// 陌生人看私密账号
	view, err := svc.GetUser(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Bio)
	assert.Nil(t, view.Email)
	assert.Equal(t, model.RelationshipNotFollowing, view.FollowedStatus)

	// 成为关注者后资料字段解锁
	_, err = relSvc.RequestFollow(bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = relSvc.AcceptRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	view, err = svc.GetUser(bob.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Bio)
	assert.Equal(t, "hello there", *view.Bio)
	assert.Nil(t, view.Email)
	assert.Equal(t, model.RelationshipFollowing, view.FollowedStatus)

	// 本人看自己：私有字段可见
	view, err = svc.GetUser(alice.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Email)
	assert.Equal(t, model.RelationshipSelf, view.FollowedStatus)
}

func TestGetUserMissing(t *testing.T) {
	svc, _, db := newUserService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)

	view, err := svc.GetUser(alice.ID, 9999)
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestSetDetailsNoFields(t *testing.T) {
	svc, _, db := newUserService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)

	_, err := svc.SetDetails(alice.ID, &UserDetails{})
	assert.True(t, errs.Is(err, errs.KindInvalidArgument))
}

func TestSetDetailsEmptyStringClears(t *testing.T) {
	svc, _, db := newUserService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)

	name := "Alice Example"
	_, err := svc.SetDetails(alice.ID, &UserDetails{FullName: &name})
	require.NoError(t, err)

	view, err := svc.GetSelf(alice.ID)
	require.NoError(t, err)
	require.NotNil(t, view.FullName)

	// 空字符串清空字段
	empty := ""
	_, err = svc.SetDetails(alice.ID, &UserDetails{FullName: &empty})
	require.NoError(t, err)

	view, err = svc.GetSelf(alice.ID)
	require.NoError(t, err)
	assert.Nil(t, view.FullName)
}

func TestSetPrivacyStatusGoingPublic(t *testing.T) {
	svc, relSvc, db := newUserService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPrivate)
	bob := newTestUser(t, db, "bob", model.PrivacyStatusPublic)
	carol := newTestUser(t, db, "carol", model.PrivacyStatusPublic)

	_, err := relSvc.RequestFollow(bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = relSvc.RequestFollow(carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = relSvc.DenyRequest(alice.ID, carol.ID)
	require.NoError(t, err)

	// 切到 PUBLIC：待处理请求自动接受，已拒绝记录删除
	user, err := svc.SetPrivacyStatus(alice.ID, model.PrivacyStatusPublic)
	require.NoError(t, err)
	assert.Equal(t, model.PrivacyStatusPublic, user.PrivacyStatus)

	followedStatus, _, err := relSvc.Status(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipFollowing, followedStatus)

	followedStatus, _, err = relSvc.Status(carol.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipNotFollowing, followedStatus)
}

func TestSetPrivacyStatusInvalid(t *testing.T) {
	svc, _, db := newUserService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)

	_, err := svc.SetPrivacyStatus(alice.ID, "HIDDEN")
	assert.True(t, errs.Is(err, errs.KindInvalidArgument))
}

func TestSetMentalHealthSettings(t *testing.T) {
	svc, _, db := newUserService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)

	_, err := svc.SetMentalHealthSettings(alice.ID, &MentalHealthSettings{
		CommentsDisabled: true,
		SharingDisabled:  true,
	})
	require.NoError(t, err)

	view, err := svc.GetSelf(alice.ID)
	require.NoError(t, err)
	require.NotNil(t, view.CommentsDisabled)
	assert.True(t, *view.CommentsDisabled)
	assert.False(t, *view.LikesDisabled)
	assert.True(t, *view.SharingDisabled)
}

func TestDisableUserBlocksMutations(t *testing.T) {
	svc, _, db := newUserService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)

	require.NoError(t, svc.DisableUser(alice.ID))

	// 重复停用
	err := svc.DisableUser(alice.ID)
	assert.True(t, errs.Is(err, errs.KindInvalidState))

	// 停用后的写操作被拒绝
	name := "Alice"
	_, err = svc.SetDetails(alice.ID, &UserDetails{FullName: &name})
	assert.True(t, errs.Is(err, errs.KindAccessDenied))
	_, err = svc.SetThemeCode(alice.ID, "white.blue")
	assert.True(t, errs.Is(err, errs.KindAccessDenied))

	// 停用后无法登录
	_, _, err = svc.Login("alice", "test-password")
	assert.True(t, errs.Is(err, errs.KindAccessDenied))
}

func TestSetSingleFields(t *testing.T) {
	svc, _, db := newUserService(t)
	alice := newTestUser(t, db, "alice", model.PrivacyStatusPublic)

	user, err := svc.SetLanguageCode(alice.ID, "de")
	require.NoError(t, err)
	assert.Equal(t, "de", user.LanguageCode)

	user, err = svc.SetThemeCode(alice.ID, "white.blue")
	require.NoError(t, err)
	assert.Equal(t, "white.blue", user.ThemeCode)

	user, err = svc.SetAcceptedEULAVersion(alice.ID, "2.0")
	require.NoError(t, err)
	assert.Equal(t, "2.0", user.AcceptedEULAVersion)

	_, err = svc.SetLanguageCode(alice.ID, "")
	assert.True(t, errs.Is(err, errs.KindInvalidArgument))
}
