package service

import (
	"social-system/internal/model"
)

// fieldVisibility 字段可见性谓词
type fieldVisibility int

const (
	// visibleAlways 对任何查看者可见
	visibleAlways fieldVisibility = iota
	// visibleFollowers 本人可见、公开账号可见、或查看者已处于 FOLLOWING
	visibleFollowers
	// visibleSelf 仅本人可见，任何关注状态下对他人都是null
	visibleSelf
)

// visibilityPolicy 字段可见性策略表
// 这是一份固定的产品策略，按字段逐条定死，不能从单一"隐私级别"推导：
// 比如 full_name 和 theme_code 对所有人可见，bio 只对关注者可见，
// 而 language_code 永远只有本人可见
// 所有返回用户记录的读取路径都必须经过 Resolve，避免绕过脱敏
var visibilityPolicy = map[string]fieldVisibility{
	"id":                    visibleAlways,
	"username":              visibleAlways,
	"privacy_status":        visibleAlways,
	"status":                visibleAlways,
	"theme_code":            visibleAlways,
	"full_name":             visibleAlways,
	"bio":                   visibleFollowers,
	"photo_url":             visibleFollowers,
	"email":                 visibleSelf,
	"phone_number":          visibleSelf,
	"language_code":         visibleSelf,
	"accepted_eula_version": visibleSelf,
	"apns_token":            visibleSelf,
	"comments_disabled":     visibleSelf,
	"likes_disabled":        visibleSelf,
	"sharing_disabled":      visibleSelf,
	"verification_hidden":   visibleSelf,
}

// RedactedUser 脱敏后的用户视图
// 不可见字段置null；从未设置过的字符串字段同样返回null
type RedactedUser struct {
	ID                  uint    `json:"id"`
	Username            string  `json:"username"`
	PrivacyStatus       string  `json:"privacy_status"`
	Status              string  `json:"status"`
	ThemeCode           string  `json:"theme_code"`
	FollowedStatus      string  `json:"followed_status"`
	FollowerStatus      string  `json:"follower_status"`
	FullName            *string `json:"full_name"`
	Bio                 *string `json:"bio"`
	PhotoURL            *string `json:"photo_url"`
	Email               *string `json:"email"`
	PhoneNumber         *string `json:"phone_number"`
	LanguageCode        *string `json:"language_code"`
	AcceptedEULAVersion *string `json:"accepted_eula_version"`
	APNSToken           *string `json:"apns_token"`
	CommentsDisabled    *bool   `json:"comments_disabled"`
	LikesDisabled       *bool   `json:"likes_disabled"`
	SharingDisabled     *bool   `json:"sharing_disabled"`
	VerificationHidden  *bool   `json:"verification_hidden"`
}

// Resolve 计算 subject 对某个查看者的脱敏视图
// followedStatus/followerStatus 是查看者与 subject 的双向关系状态，
// 查看者即本人时两者均为 SELF
// 纯函数：相同输入永远产出相同的脱敏结果
func Resolve(subject *model.User, followedStatus, followerStatus string) *RedactedUser {
	isSelf := followedStatus == model.RelationshipSelf

	visible := func(field string) bool {
		switch visibilityPolicy[field] {
		case visibleAlways:
			return true
		case visibleFollowers:
			return isSelf || subject.IsPublic() || followedStatus == model.RelationshipFollowing
		case visibleSelf:
			return isSelf
		default:
			return false
		}
	}

	view := &RedactedUser{
		ID:             subject.ID,
		Username:       subject.Username,
		PrivacyStatus:  subject.PrivacyStatus,
		Status:         subject.Status,
		ThemeCode:      subject.ThemeCode,
		FollowedStatus: followedStatus,
		FollowerStatus: followerStatus,
	}

	if visible("full_name") {
		view.FullName = optional(subject.FullName)
	}
	if visible("bio") {
		view.Bio = optional(subject.Bio)
	}
	if visible("photo_url") {
		view.PhotoURL = optional(subject.PhotoURL)
	}
	if visible("email") {
		view.Email = optional(subject.Email)
	}
	if visible("phone_number") {
		view.PhoneNumber = optional(subject.PhoneNumber)
	}
	if visible("language_code") {
		view.LanguageCode = optional(subject.LanguageCode)
	}
	if visible("accepted_eula_version") {
		view.AcceptedEULAVersion = optional(subject.AcceptedEULAVersion)
	}
	if visible("apns_token") {
		view.APNSToken = optional(subject.APNSToken)
	}
	if visible("comments_disabled") {
		view.CommentsDisabled = &subject.CommentsDisabled
		view.LikesDisabled = &subject.LikesDisabled
		view.SharingDisabled = &subject.SharingDisabled
		view.VerificationHidden = &subject.VerificationHidden
	}

	return view
}

// optional 空字符串视为未设置，返回null
func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
