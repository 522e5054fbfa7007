package model

import (
	"time"

	"gorm.io/gorm"
)

// 用户隐私状态
const (
	PrivacyStatusPublic  = "PUBLIC"
	PrivacyStatusPrivate = "PRIVATE"
)

// 用户账号状态
const (
	UserStatusActive   = "ACTIVE"
	UserStatusDisabled = "DISABLED"
)

// User 用户模型
// 索引与唯一约束：用户名唯一、邮箱唯一
// 说明：密码仅存储哈希（PasswordHash），不存储明文
// 账号永不删除，只会标记为 DISABLED
// 默认主题为 black.green，默认语言为 en

type User struct {
	ID                  uint           `gorm:"primaryKey"`
	Username            string         `gorm:"type:varchar(64);not null;uniqueIndex;comment:用户名"`
	Email               string         `gorm:"type:varchar(128);uniqueIndex;comment:邮箱"`
	PhoneNumber         string         `gorm:"type:varchar(32);comment:手机号"`
	PasswordHash        string         `gorm:"type:varchar(255);not null;comment:密码哈希"`
	FullName            string         `gorm:"type:varchar(128);comment:全名"`
	Bio                 string         `gorm:"type:varchar(512);comment:个人简介"`
	PhotoURL            string         `gorm:"type:varchar(255);comment:头像URL"`
	PrivacyStatus       string         `gorm:"type:varchar(16);not null;default:'PUBLIC';comment:隐私状态"`
	Status              string         `gorm:"type:varchar(16);not null;default:'ACTIVE';comment:账号状态"`
	LanguageCode        string         `gorm:"type:varchar(16);default:'en';comment:语言代码"`
	ThemeCode           string         `gorm:"type:varchar(32);default:'black.green';comment:主题代码"`
	AcceptedEULAVersion string         `gorm:"type:varchar(32);comment:已接受的EULA版本"`
	APNSToken           string         `gorm:"type:varchar(255);comment:APNS设备令牌"`
	CommentsDisabled    bool           `gorm:"default:false;comment:禁用评论"`
	LikesDisabled       bool           `gorm:"default:false;comment:禁用点赞"`
	SharingDisabled     bool           `gorm:"default:false;comment:禁用分享"`
	VerificationHidden  bool           `gorm:"default:false;comment:隐藏验证标记"`
	CreatedAt           time.Time      `gorm:"comment:创建时间"`
	UpdatedAt           time.Time      `gorm:"comment:更新时间"`
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名（全局配置使用单数表名）
func (User) TableName() string { return "user" }

// IsDisabled 账号是否已停用
func (u *User) IsDisabled() bool { return u.Status == UserStatusDisabled }

// IsPublic 账号是否公开
func (u *User) IsPublic() bool { return u.PrivacyStatus == PrivacyStatusPublic }
