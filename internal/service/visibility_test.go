package service

import (
	"testing"

	"social-system/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullUser(privacyStatus string) *model.User {
	return &model.User{
		ID:                  1,
		Username:            "alice",
		Email:               "alice@example.com",
		PhoneNumber:         "13800000000",
		FullName:            "Alice Example",
		Bio:                 "hello",
		PhotoURL:            "https://example.com/a.png",
		PrivacyStatus:       privacyStatus,
		Status:              model.UserStatusActive,
		LanguageCode:        "en",
		ThemeCode:           "black.green",
		AcceptedEULAVersion: "1.2",
		APNSToken:           "apns-token",
		CommentsDisabled:    true,
	}
}

func TestResolveSelf(t *testing.T) {
	view := Resolve(fullUser(model.PrivacyStatusPrivate), model.RelationshipSelf, model.RelationshipSelf)

	// 本人视角所有字段可见
	require.NotNil(t, view.FullName)
	assert.Equal(t, "Alice Example", *view.FullName)
	require.NotNil(t, view.Email)
	assert.Equal(t, "alice@example.com", *view.Email)
	require.NotNil(t, view.LanguageCode)
	require.NotNil(t, view.APNSToken)
	require.NotNil(t, view.CommentsDisabled)
	assert.True(t, *view.CommentsDisabled)
	require.NotNil(t, view.LikesDisabled)
	assert.False(t, *view.LikesDisabled)
}

func TestResolvePublicSubjectStranger(t *testing.T) {
	view := Resolve(fullUser(model.PrivacyStatusPublic), model.RelationshipNotFollowing, model.RelationshipNotFollowing)

	// 公开账号：资料字段可见，私有字段仍然不可见
	require.NotNil(t, view.FullName)
	assert.Equal(t, "Alice Example", *view.FullName)
	require.NotNil(t, view.Bio)
	require.NotNil(t, view.PhotoURL)
	assert.Nil(t, view.Email)
	assert.Nil(t, view.PhoneNumber)
	assert.Nil(t, view.LanguageCode)
	assert.Nil(t, view.AcceptedEULAVersion)
	assert.Nil(t, view.APNSToken)
	assert.Nil(t, view.CommentsDisabled)
}

func TestResolvePrivateSubjectStranger(t *testing.T) {
	view := Resolve(fullUser(model.PrivacyStatusPrivate), model.RelationshipNotFollowing, model.RelationshipNotFollowing)

	// 私密账号对陌生人只剩永远可见的字段：full_name 可见而 bio 不可见
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, "black.green", view.ThemeCode)
	assert.Equal(t, model.PrivacyStatusPrivate, view.PrivacyStatus)
	require.NotNil(t, view.FullName)
	assert.Equal(t, "Alice Example", *view.FullName)
	assert.Nil(t, view.Bio)
	assert.Nil(t, view.PhotoURL)
	assert.Nil(t, view.Email)
}

func TestResolvePrivateSubjectFollower(t *testing.T) {
	view := Resolve(fullUser(model.PrivacyStatusPrivate), model.RelationshipFollowing, model.RelationshipNotFollowing)

	// FOLLOWING 解锁资料字段，但私有字段依然不可见
	require.NotNil(t, view.Bio)
	require.NotNil(t, view.PhotoURL)
	assert.Nil(t, view.Email)
	assert.Nil(t, view.APNSToken)
	assert.Nil(t, view.CommentsDisabled)
}

func TestResolveRequestedNotEnough(t *testing.T) {
	// REQUESTED 不是 FOLLOWING，不解锁任何字段
	view := Resolve(fullUser(model.PrivacyStatusPrivate), model.RelationshipRequested, model.RelationshipNotFollowing)
	assert.Nil(t, view.Bio)

	view = Resolve(fullUser(model.PrivacyStatusPrivate), model.RelationshipDenied, model.RelationshipNotFollowing)
	assert.Nil(t, view.Bio)
}

func TestResolveReverseFollowIrrelevant(t *testing.T) {
	// subject 关注查看者不影响查看者的可见性
	view := Resolve(fullUser(model.PrivacyStatusPrivate), model.RelationshipNotFollowing, model.RelationshipFollowing)
	assert.Nil(t, view.Bio)
	assert.Equal(t, model.RelationshipFollowing, view.FollowerStatus)
}

func TestResolveUnsetFieldsAreNull(t *testing.T) {
	subject := &model.User{
		ID:            2,
		Username:      "bob",
		PrivacyStatus: model.PrivacyStatusPublic,
		Status:        model.UserStatusActive,
	}
	view := Resolve(subject, model.RelationshipNotFollowing, model.RelationshipNotFollowing)

	// 从未设置的字段即使可见也是null
	assert.Nil(t, view.FullName)
	assert.Nil(t, view.Bio)
	assert.Nil(t, view.PhotoURL)
}

func TestResolveDeterministic(t *testing.T) {
	subject := fullUser(model.PrivacyStatusPrivate)
	a := Resolve(subject, model.RelationshipFollowing, model.RelationshipNotFollowing)
	b := Resolve(subject, model.RelationshipFollowing, model.RelationshipNotFollowing)
	assert.Equal(t, a, b)
}
